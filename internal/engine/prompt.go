package engine

// LLM prompt templates: data only, no logic.

// SummarySystemPrompt frames the model for transcript summaries.
const SummarySystemPrompt = `You summarize YouTube video transcripts for a reader who has not watched the video.
Use only what the transcript says. Do not invent facts, names or numbers.`

// SummaryPrompt asks for a structured summary.
// Args: video title, language code, truncation note, transcript text.
const SummaryPrompt = `Video title: %s
Transcript language: %s
%s
Write the summary in the transcript language. Format:
- one paragraph overview (3-5 sentences)
- 4-8 bullet points with the key points, in the order they appear
- one line "Verdict:" saying who would find the video useful

Transcript:
%s`
