package prompts

import "fmt"

// ============================================================================
// Inscription analysis (vision model)
// ============================================================================

const analysisPromptTemplate = `Analyze the ancient writing in this image. Determine:
1. Which ancient writing system is used (Sumerian cuneiform, Egyptian hieroglyphs, Greek, etc.)
2. A transcription of the text (if legible)
3. A translation into %s
4. An estimate of the period and region
5. A confidence score (0-100)

Respond in JSON format:
{
  "scriptType": "detected writing system",
  "originalText": "transcription",
  "translation": "translation",
  "period": "period information",
  "region": "region",
  "confidence": confidence_score_number,
  "notes": "additional notes"
}`

// AnalysisPrompt returns the fixed instruction sent with every inscription image.
// Parameters:
//   - targetLanguage: language the translation should be written in; empty means English.
//
// Returns:
//   - string: prompt text.
func AnalysisPrompt(targetLanguage string) string {
	if targetLanguage == "" {
		targetLanguage = "English"
	}
	return fmt.Sprintf(analysisPromptTemplate, targetLanguage)
}

// ============================================================================
// Domain chat
// ============================================================================

// ChatSystemInstruction is prepended to every user question. It is not stored
// as a conversation turn.
const ChatSystemInstruction = `You are an AI assistant specialized in archaeological linguistics. You give detailed information about ancient languages (Sumerian, Akkadian, Egyptian hieroglyphs, Maya, Phoenician, Linear B, Old Turkic, Ancient Greek and others), archaeological finds, inscriptions and ancient civilizations. Your answers should be scholarly and explanatory.`

// ChatGreeting seeds every new conversation as the first assistant turn.
const ChatGreeting = `Hello! I am an AI assistant specialized in archaeological linguistics. I can answer your questions about ancient languages, inscriptions, civilizations and archaeological finds.`

// ChatApology replaces the assistant reply when the model call fails.
const ChatApology = `Sorry, something went wrong. Please try again.`

// ComposeChatMessage prepends the domain instruction to a raw user question.
func ComposeChatMessage(userText string) string {
	return ChatSystemInstruction + "\n\nUser question: " + userText
}
