package client

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
)

var (
	boldGreen  = color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan   = color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow     = color.New(color.FgYellow).SprintFunc()
	faint      = color.New(color.Faint).SprintFunc()
	errorColor = color.New(color.FgRed, color.Bold).SprintFunc()
)

func printJSON(v interface{}) {
	output, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(output))
}

// answerText renders a possibly-null answer.
func answerText(answer *string) string {
	if answer == nil {
		return yellow("(no answer available)")
	}
	return *answer
}
