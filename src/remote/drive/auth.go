package drive

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gdrive "google.golang.org/api/drive/v3"

	"cursor-sync/src/remote"
)

// TokenSource builds a self-refreshing token source from the stored OAuth
// client credentials and token files. It fails if no token has been stored
// yet; run Authorize first.
func TokenSource(ctx context.Context, credentialsFile, tokenFile string) (oauth2.TokenSource, error) {
	cfg, err := readOAuthConfig(credentialsFile)
	if err != nil {
		return nil, err
	}
	tok, err := readToken(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("no stored token at %s (run the auth command first): %w", tokenFile, err)
	}
	return cfg.TokenSource(ctx, tok), nil
}

// Authorize makes sure a usable token exists at tokenFile. An existing token
// is refreshed in place when possible; otherwise the user is sent through
// the consent flow, with the authorization code read from in.
func Authorize(ctx context.Context, credentialsFile, tokenFile string, in io.Reader, out io.Writer) error {
	cfg, err := readOAuthConfig(credentialsFile)
	if err != nil {
		return err
	}

	if tok, err := readToken(tokenFile); err == nil {
		fresh, err := cfg.TokenSource(ctx, tok).Token()
		if err == nil {
			if fresh.AccessToken != tok.AccessToken {
				return writeToken(tokenFile, fresh)
			}
			return nil
		}
		// Refresh failed; fall through to a fresh consent flow.
	}

	url := cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Fprintf(out, "Open the following link in your browser, then paste the authorization code:\n%s\n> ", url)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return fmt.Errorf("reading authorization code: %w", err)
	}
	code := strings.TrimSpace(line)
	if code == "" {
		return errors.New("no authorization code entered")
	}
	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return &remote.UnavailableError{Op: "token exchange", Err: err}
	}
	return writeToken(tokenFile, tok)
}

func readOAuthConfig(credentialsFile string) (*oauth2.Config, error) {
	b, err := os.ReadFile(credentialsFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", remote.ErrNoCredentials, credentialsFile)
	}
	if err != nil {
		return nil, fmt.Errorf("reading credentials: %w", err)
	}
	cfg, err := google.ConfigFromJSON(b, gdrive.DriveFileScope)
	if err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}
	return cfg, nil
}

func readToken(tokenFile string) (*oauth2.Token, error) {
	f, err := os.Open(tokenFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("decoding token: %w", err)
	}
	return tok, nil
}

func writeToken(tokenFile string, tok *oauth2.Token) error {
	f, err := os.OpenFile(tokenFile, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("writing token: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(tok)
}
