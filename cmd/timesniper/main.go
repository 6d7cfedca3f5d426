package main

import (
	"timesniper/cmd/timesniper/commands"
	"timesniper/lib/osutil"
)

func main() {
	ctx := osutil.SignalContext()
	commands.Execute(ctx)
}
