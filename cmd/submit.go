package cmd

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/productionplan/api/productionplan"
	"github.com/kilianp07/productionplan/auth"
	"github.com/kilianp07/productionplan/config"
)

var submitURL string

var submitCmd = &cobra.Command{
	Use:   "submit <payload.json>",
	Short: "Post a payload to a running plan service",
	Args:  cobra.ExactArgs(1),
	RunE:  submitPayload,
}

func init() {
	submitCmd.Flags().StringVar(&submitURL, "url", "", "plan endpoint, overrides client.url")
	rootCmd.AddCommand(submitCmd)
}

func submitPayload(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	url := cfg.Client.URL
	if submitURL != "" {
		url = submitURL
	}
	payload, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: time.Duration(cfg.Client.TimeoutSeconds) * time.Second}
	if cfg.Client.Auth.Enabled() {
		client = auth.HTTPClient(contextOrBackground(cmd), cfg.Client.Auth, client)
	}
	req, err := http.NewRequestWithContext(contextOrBackground(cmd), http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: %s", resp.Status, bytes.TrimSpace(body))
	}
	out := cmd.OutOrStdout()
	if _, err := out.Write(body); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.ErrOrStderr(), "plan %s status=%s shortfall=%s\n",
		resp.Header.Get(productionplan.HeaderPlanID),
		resp.Header.Get(productionplan.HeaderPlanStatus),
		resp.Header.Get(productionplan.HeaderPlanShortfall))
	return err
}
