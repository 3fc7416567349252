package bot

const helpText = `I grab videos from links and post them back here.

Send me a link in a private chat, or use a command:
/vidify <url> - convert the linked media to an mp4 video
/gifify <url> - convert the linked media to a silent animation
/help - show this message

Both commands also work as a reply to a message containing a link.

Optional trimming, anywhere in the message:
s=<time> or start=<time> - where to start
e=<time> or end=<time> - where to stop
d=<time> or dur=<time> - how long to keep

Times look like 90, 1:30, 1:02:03.5, or 1.5s. start= needs an end= or dur= to go with it.

Example: /vidify https://example.com/watch?v=abc s=1:30 e=2:00`
