package client

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cloo-solutions/lectern/internal/cli"
	"github.com/spf13/cobra"
)

type askRequest struct {
	Question string `json:"question"`
	Context  string `json:"context,omitempty"`
}

// AskResponse mirrors the API answer to a question. Answer is nil when the
// server could not produce one.
type AskResponse struct {
	QuestionID string  `json:"questionId"`
	Answer     *string `json:"answer"`
}

// Ask posts a question to a room.
func (c *APIClient) Ask(roomID, question, context string) (*AskResponse, error) {
	var resp AskResponse
	if err := c.Post(roomPath(roomID, "questions"), askRequest{Question: question, Context: context}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AskCmd asks a single question.
func AskCmd() *cobra.Command {
	var context string

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question in a room",
		Long:  "Asks a question. The answer comes from general knowledge or, failing that, from the room's transcriptions. --context answers from the given text only.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roomID, err := ResolveRoom(cmd)
			if err != nil {
				return err
			}
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			resp, err := api.Ask(roomID, strings.Join(args, " "), context)
			if err != nil {
				return fmt.Errorf("ask failed: %w", err)
			}

			if outputJSON(cmd) {
				printJSON(resp)
				return nil
			}
			fmt.Println(answerText(resp.Answer))
			return nil
		},
	}

	cmd.Flags().StringVarP(&context, "context", "c", "", "Answer only from this text")
	addRoomFlag(cmd)

	return cmd
}

// ChatCmd runs an interactive question loop against one room.
func ChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Ask questions interactively",
		Long:  "Reads questions from stdin, one per line, until 'exit' or EOF. Each question is answered independently.",
		RunE: func(cmd *cobra.Command, args []string) error {
			roomID, err := ResolveRoom(cmd)
			if err != nil {
				return err
			}
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			return runChat(api, roomID, os.Stdin, os.Stdout)
		},
	}

	addRoomFlag(cmd)

	return cmd
}

func runChat(api *APIClient, roomID string, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "%s room %s\n", boldGreen("Lectern chat"), boldCyan(roomID))
	fmt.Fprintln(out, "Type your question and press Enter. Type 'exit' to quit.")
	fmt.Fprintln(out)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, boldGreen("You: "))
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if strings.EqualFold(question, "exit") {
			break
		}

		resp, err := api.Ask(roomID, question, "")
		if err != nil {
			fmt.Fprintf(out, "%s %v\n\n", errorColor("Error:"), err)
			continue
		}
		fmt.Fprintf(out, "%s %s\n\n", boldCyan("Lectern:"), answerText(resp.Answer))
	}

	return scanner.Err()
}

func addRoomFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("room", "r", "", "Room ID (defaults to "+envRoom+" or the configured room)")
	cli.BindEnv(cmd, "room", envRoom)
}
