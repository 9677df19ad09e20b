package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/voicestart/voicestart/internal/backend"
	"github.com/voicestart/voicestart/internal/config"
	"github.com/voicestart/voicestart/internal/creds"
	"github.com/voicestart/voicestart/internal/reconcile"
	"github.com/voicestart/voicestart/internal/state"
	"github.com/voicestart/voicestart/internal/ui"
	"github.com/voicestart/voicestart/internal/uploader"
)

// tokenEnvVar overrides the saved credential without touching the file.
const tokenEnvVar = "VOICESTART_TOKEN"

// Options configure the voicewatch application.
type Options struct {
	ConfigPath string
	CredsPath  string // empty uses default ~/.config/voicestart/credentials.toml
	Token      string // explicit bearer token; highest precedence
	SaveToken  bool   // persist the explicit token for later runs

	ClientID  int64
	PollEvery int // seconds; zero uses the configured interval

	// Headless upload, performed before watching starts.
	UploadPath    string
	UploadSession int
	LanguageCode  string
}

// Run boots the session watch until the context is cancelled or the
// credential stops working.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.LoadWatch(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	credsPath := opts.CredsPath
	if credsPath == "" {
		credsPath = creds.DefaultPath()
	}

	token := resolveToken(opts, credsPath)
	if token == "" {
		return fmt.Errorf("no credential: pass -token, set %s, or save one with -save-token", tokenEnvVar)
	}
	if opts.SaveToken && opts.Token != "" {
		if err := creds.Save(credsPath, creds.Credentials{AccessToken: opts.Token}); err != nil {
			return fmt.Errorf("save token: %w", err)
		}
	}

	if opts.ClientID <= 0 {
		return fmt.Errorf("client id required")
	}

	client, err := backend.NewClient(cfg.BackendURL)
	if err != nil {
		return fmt.Errorf("init backend client: %w", err)
	}

	if opts.UploadPath != "" {
		resp, err := uploader.New(client).Submit(ctx, token, uploader.Submission{
			ClientID:      opts.ClientID,
			SessionNumber: opts.UploadSession,
			Path:          opts.UploadPath,
			LanguageCode:  opts.LanguageCode,
		})
		if err != nil {
			return fmt.Errorf("upload %s: %w", opts.UploadPath, err)
		}
		log.Printf("upload accepted: status=%s", resp.Status)
	}

	interval := cfg.PollInterval
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}

	w := &watcher{
		client:   client,
		store:    &state.Store{},
		token:    token,
		clientID: opts.ClientID,
		interval: interval,
	}

	// Populate the store before the UI starts; a failure here still
	// opens the watch, which will show the error and keep polling.
	if err := w.refresh(ctx); err != nil {
		if backend.IsUnauthorized(err) {
			return loginHint(err)
		}
		w.store.Fail(err)
	}
	w.ensurePolling(ctx)
	defer w.stopPolling()

	err = ui.Run(ui.Options{
		Context:  ctx,
		Store:    w.store,
		PollTick: interval,
		Reload:   w.reload,
	})
	if backend.IsUnauthorized(err) {
		return loginHint(err)
	}
	return err
}

// resolveToken picks the credential: explicit flag, then environment,
// then the saved file.
func resolveToken(opts Options, credsPath string) string {
	if opts.Token != "" {
		return opts.Token
	}
	if env := os.Getenv(tokenEnvVar); env != "" {
		return env
	}
	saved, err := creds.Load(credsPath)
	if err != nil {
		return ""
	}
	return saved.AccessToken
}

func loginHint(err error) error {
	return fmt.Errorf("session expired: log in again and update the saved token: %w", err)
}

// watcher owns the poll loop feeding the store. The poller is single
// use and ends on its own once nothing is pending; a reload starts a
// fresh one when needed.
type watcher struct {
	client   backend.Fetcher
	store    *state.Store
	token    string
	clientID int64
	interval time.Duration

	mu      sync.Mutex
	tracker reconcile.ResolutionTracker
	poller  *reconcile.Poller
}

// refresh performs a full fetch: client profile, voice records, upload
// jobs. It re-arms the resolution tracker against the fresh job set.
func (w *watcher) refresh(ctx context.Context) error {
	profile, err := w.client.GetClient(ctx, w.token, w.clientID)
	if err != nil {
		return fmt.Errorf("fetch client: %w", err)
	}
	records, err := w.client.ListVoiceRecords(ctx, w.token, w.clientID)
	if err != nil {
		return fmt.Errorf("fetch voice records: %w", err)
	}
	jobs, err := w.client.ListUploadJobs(ctx, w.token, w.clientID)
	if err != nil {
		return fmt.Errorf("fetch upload status: %w", err)
	}

	w.mu.Lock()
	w.tracker = reconcile.ResolutionTracker{}
	w.tracker.Observe(jobs)
	w.mu.Unlock()

	w.store.SetClient(profile)
	w.store.SetRecords(records.Records)
	w.store.SetUploads(jobs)
	return nil
}

// poll is the PollFunc behind the background poller. Fetch errors are
// committed as failures rather than returned so the failure streak and
// the offline indicator stay accurate.
func (w *watcher) poll(ctx context.Context) (reconcile.Outcome, error) {
	jobs, err := w.client.ListUploadJobs(ctx, w.token, w.clientID)
	if err != nil {
		// On 401 the loop gives up; the UI quits with a login hint.
		return reconcile.Outcome{
			Apply: func() { w.store.Fail(err) },
			Again: !backend.IsUnauthorized(err),
		}, nil
	}

	w.mu.Lock()
	resolved := w.tracker.Observe(jobs)
	w.mu.Unlock()

	var records []backend.VoiceRecord
	fetchedRecords := false
	if resolved {
		// An upload finished; the record list is what changed.
		list, rerr := w.client.ListVoiceRecords(ctx, w.token, w.clientID)
		if rerr != nil {
			log.Printf("refetch records after resolution: %v", rerr)
		} else {
			records = list.Records
			fetchedRecords = true
		}
	}

	return reconcile.Outcome{
		Apply: func() {
			w.store.SetUploads(jobs)
			if fetchedRecords {
				w.store.SetRecords(records)
			}
		},
		Again: reconcile.HasPending(jobs),
	}, nil
}

// reload services the UI's manual refresh: full fetch, then make sure a
// poller is running again in case the previous one ended.
func (w *watcher) reload(ctx context.Context) error {
	if err := w.refresh(ctx); err != nil {
		w.store.Fail(err)
		return err
	}
	w.ensurePolling(ctx)
	return nil
}

func (w *watcher) ensurePolling(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.poller != nil {
		select {
		case <-w.poller.Done():
		default:
			return // still running
		}
	}
	w.poller = reconcile.NewPoller(w.interval, w.poll)
	w.poller.Start(ctx)
}

func (w *watcher) stopPolling() {
	w.mu.Lock()
	p := w.poller
	w.mu.Unlock()
	if p != nil {
		p.Stop()
	}
}
