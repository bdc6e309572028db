package client

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// UploadResponse mirrors the API response to an audio upload.
type UploadResponse struct {
	ChunkID       string `json:"chunkId"`
	Transcription string `json:"transcription"`
}

// UploadCmd uploads recorded audio files to a room.
func UploadCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload recorded audio to a room",
		Long:  "Uploads audio files in order. Each file becomes one transcribed chunk in the room.",
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

			var results []UploadResponse
			for _, path := range args {
				resp, err := uploadFile(api, roomID, path, !quiet && !outputJSON(cmd))
				if err != nil {
					return fmt.Errorf("upload %s: %w", path, err)
				}
				results = append(results, *resp)
				if !outputJSON(cmd) {
					fmt.Printf("%s %s → chunk %s\n", boldGreen("✓"), filepath.Base(path), boldCyan(resp.ChunkID))
					if !quiet {
						fmt.Printf("  %s\n", faint(resp.Transcription))
					}
				}
			}

			if outputJSON(cmd) {
				printJSON(results)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print progress or transcriptions")
	addRoomFlag(cmd)

	return cmd
}

func uploadFile(api *APIClient, roomID, path string, showProgress bool) (*UploadResponse, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var onProgress ProgressFunc
	if showProgress {
		onProgress = func(current, total int64) {
			if total > 0 {
				fmt.Fprintf(os.Stderr, "\r  uploading %3d%%", current*100/total)
			}
		}
		defer fmt.Fprint(os.Stderr, "\r\033[K")
	}

	var resp UploadResponse
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if err := api.UploadAudio(roomPath(roomID, "audio"), filepath.Base(path), contentType, file, onProgress, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
