package session

import (
	"encoding/json"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

// tokenFile is the name of the cached-token file under the base directory.
const tokenFile = "token.json"

// loadToken reads a previously cached token.
func loadToken(baseDir string) (*oauth2.Token, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, tokenFile))
	if err != nil {
		return nil, err
	}
	tok := &oauth2.Token{}
	if err := json.Unmarshal(data, tok); err != nil {
		return nil, err
	}
	return tok, nil
}

// saveToken caches the token with restricted permissions.
func saveToken(baseDir string, tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(baseDir, tokenFile), data, 0600)
}

// clearToken removes the cached token; missing files are fine.
func clearToken(baseDir string) {
	_ = os.Remove(filepath.Join(baseDir, tokenFile))
}
