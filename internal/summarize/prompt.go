package summarize

const systemPrompt = "You are an assistant that writes faithful, concise summaries of video transcripts. Never invent facts that are not in the transcript."

const shortPrompt = `Summarize the following video transcript in about 200 words. Keep the key points, names and conclusions.

Transcript:
%s`

const chunkPrompt = `Summarize the following part of a video transcript in a few short paragraphs. This is one section of a longer video; keep every important point so the sections can be merged later.

Transcript section:
%s`

const reducePrompt = `The following are summaries of consecutive sections of one video, in order. Merge them into a single coherent summary of about 200 words. Do not mention that the video was split into sections.

%s`

const detailedPrompt = `Write a detailed summary of at least 350 words for the following video transcript. Cover all major topics in the order they appear, including specifics, names and numbers.

Transcript:
%s`

const detailedReducePrompt = `The following are summaries of consecutive sections of one video, in order. Merge them into a single detailed summary of at least 350 words, covering all major topics in order. Do not mention that the video was split into sections.

%s`

const tagsPrompt = `List between 4 and 10 short topic tags for the following video summary. Reply with a comma-separated list only. Each tag must be a single alphanumeric word of at most 25 characters, without the # symbol.

Summary:
%s`
