package client

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// Question mirrors the API question representation.
type Question struct {
	ID        string  `json:"id"`
	RoomID    string  `json:"roomId"`
	Question  string  `json:"question"`
	Answer    *string `json:"answer"`
	CreatedAt string  `json:"createdAt"`
}

// QuestionListResponse mirrors a page of room questions.
type QuestionListResponse struct {
	Questions []Question `json:"questions"`
	Cursor    string     `json:"cursor,omitempty"`
	HasMore   bool       `json:"has_more"`
}

// QuestionsCmd lists the questions asked in a room.
func QuestionsCmd() *cobra.Command {
	var (
		limit  int
		cursor string
	)

	cmd := &cobra.Command{
		Use:   "questions",
		Short: "List questions asked in a room, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			roomID, err := ResolveRoom(cmd)
			if err != nil {
				return err
			}
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			var resp QuestionListResponse
			if err := api.Get(questionsPath(roomID, limit, cursor), &resp); err != nil {
				return fmt.Errorf("failed to list questions: %w", err)
			}

			if outputJSON(cmd) {
				printJSON(resp)
				return nil
			}
			printQuestions(resp)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of results")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")
	addRoomFlag(cmd)

	return cmd
}

func questionsPath(roomID string, limit int, cursor string) string {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if cursor != "" {
		query.Set("cursor", cursor)
	}
	path := roomPath(roomID, "questions")
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return path
}

func printQuestions(resp QuestionListResponse) {
	if len(resp.Questions) == 0 {
		fmt.Println("No questions found.")
		return
	}

	for i, q := range resp.Questions {
		fmt.Printf("%s %s\n", boldGreen("Q:"), q.Question)
		fmt.Printf("%s %s\n", boldCyan("A:"), answerText(q.Answer))
		fmt.Printf("   %s\n", faint(q.CreatedAt+"  "+q.ID))
		if i < len(resp.Questions)-1 {
			fmt.Println(strings.Repeat("-", 40))
		}
	}
	if resp.HasMore && resp.Cursor != "" {
		fmt.Printf("\n%s\n", strings.Repeat("-", 40))
		fmt.Printf("More results available. Use --cursor %s\n", resp.Cursor)
	}
}
