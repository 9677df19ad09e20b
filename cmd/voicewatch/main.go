package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/voicestart/voicestart/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override config path (optional)")
	credsPath := flag.String("creds", "", "override credentials path (optional)")
	token := flag.String("token", "", "bearer token (overrides saved credential)")
	saveToken := flag.Bool("save-token", false, "persist -token for later runs")
	clientID := flag.Int64("client", 0, "counseling client id to watch (required)")
	pollSeconds := flag.Int("poll", 0, "status poll interval in seconds (optional, defaults to 5s)")
	uploadPath := flag.String("upload", "", "audio file to upload before watching (optional)")
	uploadSession := flag.Int("session", 0, "session number for -upload (optional)")
	language := flag.String("language", "", "language code for -upload (optional, defaults to ko)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath:    *configPath,
		CredsPath:     *credsPath,
		Token:         *token,
		SaveToken:     *saveToken,
		ClientID:      *clientID,
		UploadPath:    *uploadPath,
		UploadSession: *uploadSession,
		LanguageCode:  *language,
	}
	if poll := *pollSeconds; poll > 0 {
		opts.PollEvery = poll
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "voicewatch: %v\n", err)
		return 1
	}
	return 0
}
