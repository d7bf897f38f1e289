package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/odellis/hireflow/internal/logger"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptReplyAccept  = "Accept with a time slot"
	PromptReplyReject  = "Decline the interview"
	PromptReplyUnclear = "Ambiguous reply"
	PromptReplyCustom  = "Type my own reply"
)

var cannedReplies = map[string]string{
	PromptReplyAccept:  "I'm available Monday at 2 PM UTC",
	PromptReplyReject:  "Thanks but I accepted another offer",
	PromptReplyUnclear: "maybe, not sure yet",
}

var replyPrompt = promptui.Select{
	Label: "Candidate reply",
	Items: []string{PromptReplyAccept, PromptReplyReject, PromptReplyUnclear, PromptReplyCustom},
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Inject a simulated candidate reply into a running hireflow backend",
	Run: func(cmd *cobra.Command, _ []string) {
		simulate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().StringP("addr", "a", "http://localhost:8080", "base URL of the running backend")
	simulateCmd.Flags().StringP("email", "e", "", "candidate email address. Prompted for when unset.")
	simulateCmd.Flags().StringP("reply", "r", "", "reply text. Prompted for when unset.")
}

func simulate(cmd *cobra.Command) {
	lg, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	email := cmd.Flag("email").Value.String()
	if email == "" {
		prompt := promptui.Prompt{
			Label: "Candidate email",
			Validate: func(input string) error {
				if !strings.Contains(input, "@") {
					return fmt.Errorf("not an email address")
				}
				return nil
			},
		}
		email, err = prompt.Run()
		if err != nil {
			lg.Fatal("exiting", zap.Error(err))
		}
	}

	reply := cmd.Flag("reply").Value.String()
	if reply == "" {
		_, choice, err := replyPrompt.Run()
		if err != nil {
			lg.Fatal("exiting", zap.Error(err))
		}

		reply = cannedReplies[choice]
		if choice == PromptReplyCustom {
			prompt := promptui.Prompt{Label: "Reply text"}
			reply, err = prompt.Run()
			if err != nil {
				lg.Fatal("exiting", zap.Error(err))
			}
		}
	}

	body, _ := json.Marshal(map[string]string{
		"candidate_email": email,
		"reply_text":      reply,
	})

	addr := strings.TrimRight(cmd.Flag("addr").Value.String(), "/")
	client := &http.Client{Timeout: 15 * time.Second}

	resp, err := client.Post(addr+"/api/simulate/reply", "application/json", bytes.NewReader(body))
	if err != nil {
		lg.Fatal("sending simulated reply", zap.Error(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		lg.Fatal("backend rejected the simulated reply", zap.Int("status", resp.StatusCode))
	}

	lg.Info("simulated reply injected",
		zap.String(logger.FieldCandidate, email),
		zap.String("reply", logger.TruncateForLog(reply, 100)),
	)
}
