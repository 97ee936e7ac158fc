package commands

import (
	"fmt"
	"io"
)

// showGuide prints the banner and a short overview of the commands. It is
// what a bare "tally" shows.
func showGuide(w io.Writer) {
	fmt.Fprint(w, `
████████╗ █████╗ ██╗     ██╗  ██╗   ██╗
╚══██╔══╝██╔══██╗██║     ██║  ╚██╗ ██╔╝
   ██║   ███████║██║     ██║   ╚████╔╝
   ██║   ██╔══██║██║     ██║    ╚██╔╝
   ██║   ██║  ██║███████╗███████╗██║
   ╚═╝   ╚═╝  ╚═╝╚══════╝╚══════╝╚═╝

tally - task timer with points

COMMANDS:

  add <task>              Create a task with smart parsing
    -t, --tags            Comma-separated tags
    -e, --expected        Expected time (45, 45m, 1h30m, 2 hours)
    -d, --difficulty      Difficulty 1-5
    -i, --interactive     Open the form

    Smart syntax:
      #tag,tag      Tags
      ~45m          Expected time
      !4            Difficulty

    Example:
      tally add "Write release notes #docs ~1h !2"

  ls                      List open tasks (--done, --all, --search, --tag)
  search <query>          Search all tasks by title or tag
  start [id]              Start a task and open the timer (--last, --no-ui)
  pause [id]              Pause the running task
  resume <id>             Resume a paused task
  toggle [id]             Start or pause
  finish [id]             Finish and score a task
  status                  Show the running task
  edit <id>               Edit title, tags or difficulty
  rm <id>                 Delete a task

  watch [id]              Full-screen timer
  board                   Interactive task board

  stats                   Analytics (--period day|week|month, --format table|json|yaml)
  export                  CSV export (--period, --from, --to, -o)
  week                    This week's finished work by day

  remind check            Check for inactivity once
  remind dismiss          Hide the reminder (--start-last)
  remind watch            Keep checking until interrupted
  mute                    Toggle the finish sound
  import <file>           Import a saved state file
  config init|show        Configuration

Task ids can be shortened to any unique prefix.

`)
}
