package usecase

import (
	"strings"

	"github.com/forPelevin/vidarticle/internal/types"
)

const boundaryPrompt = `Choose a title and description for video subtitles and break subtitles into topics which should cover the entire subtitles.
You will receive subtitles in the following format (start - video subtitles):
hh:mm:ss - subtitles
hh:mm:ss - subtitles
...

Respond with valid JSON in the following format (Substitute text in [square brackets]):
{"title": "[title]", "description": "[summarize what was said in the subtitles]", "topics": [{"start": "[hh:mm:ss]", "end": "[hh:mm:ss]"}, ...]}
"start" and "end" indicate the beginning and end of the discussion on this topic in video subtitles. Topics must cover all video subtitles and should last more than a minute.`

const topicPromptTemplate = `Your task is to combine video subtitles into separate whole sentences in {person} person without losing the meaning, combine multiple video subtitles into one sentence to achieve this task. Each sentence should tell one thought. Also provide title which expresses the meaning of all sentences. Answer in video subtitle language.
You will receive subtitles in the following format:
hh:mm:ss - subtitles
hh:mm:ss - subtitles
...

Answer in video subtitle language. Response template:
[title]
[hh:mm:ss - hh:mm:ss] [generated sentence]
[hh:mm:ss - hh:mm:ss] [generated sentence]
...

Substitute [hh:mm:ss - hh:mm:ss] with time, for example [00:01:22 - 00:01:35] and [generated sentence] with generated sentence. Do not provide text that does not fit the template.`

func topicPrompt(p types.Person) string {
	word := "first"
	if p == types.PersonThird {
		word = "third"
	}
	return strings.ReplaceAll(topicPromptTemplate, "{person}", word)
}
