package constants

// Logo is the ASCII banner shown by --logo.
const Logo = `
                 _                                          _ _
  __ _ _   _| |_ ___   ___ ___  _ __ ___  _ __ ___ (_) |_
 / _' | | | | __/ _ \ / __/ _ \| '_ ' _ \| '_ ' _ \| | __|
| (_| | |_| | || (_) | (_| (_) | | | | | | | | | | | | |_
 \__,_|\__,_|\__\___/ \___\___/|_| |_| |_|_| |_| |_|_|\__|
`

// Tagline is printed under the logo.
const Tagline = "Save early, commit automatically."

// StartMessage is the console line printed once the watcher is running.
const StartMessage = "Watching for file changes... Auto commits will be created automatically."

// SummaryRule separates the session summary from the commit log.
const SummaryRule = "---------------------------------------------"
