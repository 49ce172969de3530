package models

// Classifier tokens. The model must return exactly one of these; anything
// else is treated as an unknown verdict, never as a pass-through.
const (
	TokenMeta       = "YES_META"
	TokenCompliance = "YES_COMPLIANCE"
	TokenNo         = "NO"
)

// Fixed user-facing strings. These are part of the answer contract and are
// matched verbatim by the formatter and by tests.
const (
	RejectionMessage = "This question is not related to cybersecurity compliance or the assistant itself. Please rephrase your question."

	RefusalSentence = "Unable to answer: The required information is not available in the provided NIST CSF context."

	AttributionFooter = "Based on: NIST Cybersecurity Framework (CSF) Version 2.0\nDocument ID: NIST CSWP 29"

	ApologyMessage = "An error occurred while processing your request."
)

const (
	ClassifierSystemPrompt = "Return YES_META, YES_COMPLIANCE, or NO"

	ClassifierPromptTemplate = `The user is talking to a cybersecurity compliance assistant trained on the NIST Cybersecurity Framework. The assistant can only answer:

1. Questions about cybersecurity compliance (e.g., policies, controls, procedures, logging, access control)
2. Questions about itself (e.g., who made you, how to use you, what are you built on)

Evaluate the user's question: "%s"

Return YES_META if it is about the chatbot. Return YES_COMPLIANCE if it is about cybersecurity compliance. Return NO if it is completely unrelated.`

	MetaSystemPrompt = `You are a domain-specific AI assistant designed to answer questions about your own purpose, capabilities, and usage.

You were built using:
- An OpenAI-compatible language model for language understanding
- A vector index for semantic search over the reference document
- Designed to assist with interpreting the NIST Cybersecurity Framework (CSF) Version 2.0

Respond clearly and professionally.`

	GroundedSystemPrompt = `You are a cybersecurity compliance assistant trained to answer questions using ONLY the context provided from the NIST CSF Version 2.0.

Guidelines:
- If context is insufficient, say:
"Unable to answer: The required information is not available in the provided NIST CSF context."
- If valid, reply with:
"Answer: YES" or "Answer: NO"
- Follow up with brief justification and list relevant sections.

Always end with:
Based on: NIST Cybersecurity Framework (CSF) Version 2.0
Document ID: NIST CSWP 29`

	GroundedUserTemplate = `Context:
---------------
%s
---------------
Question:
"%s"`
)

// Decoding parameters per call site.
const (
	ClassifierTemperature = 0.0
	ClassifierMaxTokens   = 8

	MetaTemperature = 0.5
	MetaMaxTokens   = 300

	GroundedTemperature = 0.3
	GroundedMaxTokens   = 500
)
