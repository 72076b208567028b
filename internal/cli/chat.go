package cli

import (
	"fmt"
	"strings"

	"kala/internal/domain/chat"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newChatCommand(o *options) *cobra.Command {
	var quick string
	var list bool

	cmd := &cobra.Command{
		Use:   "chat [text...]",
		Short: "Show the assistant reply for a message or quick action",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()

			if list {
				qas := chat.QuickActions()
				if done, err := o.render(w, qas); done || err != nil {
					return err
				}
				for _, qa := range qas {
					fmt.Fprintf(w, "%-20s %s\n", qa.ID, qa.Label)
				}
				return nil
			}

			req := chat.Request{Text: strings.Join(args, " "), QuickAction: quick}
			shown, input, isQuick, err := req.Prepare()
			if err != nil {
				return err
			}
			reply := chat.Select(input, isQuick)
			o.logger.Debug("reply selected", zap.String("rule", reply.Rule))

			out := struct {
				User  string     `json:"user" yaml:"user"`
				Reply chat.Reply `json:"reply" yaml:"reply"`
			}{User: shown, Reply: reply}
			if done, err := o.render(w, out); done || err != nil {
				return err
			}
			fmt.Fprintf(w, "> %s\n%s\n", shown, reply.Text)
			return nil
		},
	}

	cmd.Flags().StringVarP(&quick, "quick", "q", "", "Quick action id, e.g. suggest_price")
	cmd.Flags().BoolVar(&list, "list", false, "List the quick actions")
	return cmd
}
