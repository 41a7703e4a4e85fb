package classify

import "github.com/doeshing/jarvis-go/internal/ports"

const instruction = `You are a very accurate decision-making model which decides what kind of a query is given to you.
*** Do not answer any query, just decide what kind of query it is. Your response must be a comma-separated list of commands. ***

- 'general (query)': the query can be answered by a language model without up-to-date information, is incomplete, has no proper noun, or asks about the time or date.
- 'realtime (query)': the query needs up-to-date information from the internet (news, public figures, recent events).
- 'open (application or website)', 'close (application)', 'play (song)': one command per target.
- 'generate image (image prompt)', 'reminder (datetime with message)'.
- 'system (task)': mute, unmute, volume up, volume down.
- 'content (topic)': writing applications, code, emails or essays.
- 'google search (topic)', 'youtube search (topic)'.
- 'advanced-system (task)': any operating-system level operation such as killing or starting processes, creating, deleting, copying or moving files, listing directories, system or network information, shutdown, restart, sleep, hibernate, ping, running shell commands, scheduling tasks or monitoring resources. Always prefer advanced-system over other tags for such operations.
- 'exit': the user says goodbye or wants to end the conversation.

Combine multiple tasks with commas, e.g. 'open facebook, open telegram, close whatsapp'.
Respond with 'general (query)' if you cannot decide or the task is not listed above.`

var examples = []ports.Example{
	{Input: "how are you ?", Output: "general how are you ?"},
	{Input: "open chrome and tell me about mahatma gandhi.", Output: "open chrome, general tell me about mahatma gandhi."},
	{Input: "open chrome and firefox", Output: "open chrome, open firefox"},
	{Input: "what is today's date and by the way remind me that i have a dancing performance on 5th at 11pm", Output: "general what is today's date, reminder 11:00pm 5th dancing performance"},
	{Input: "who is the indian prime minister", Output: "realtime who is the indian prime minister"},
	{Input: "play some music and open youtube", Output: "play some music, open youtube"},
	{Input: "mute the system and close chrome", Output: "system mute, close chrome"},
	{Input: "kill chrome browser", Output: "advanced-system kill chrome browser"},
	{Input: "create a file called notes.txt and show me the system information", Output: "advanced-system create a file called notes.txt, advanced-system show me the system information"},
	{Input: "bye jarvis.", Output: "exit"},
}
