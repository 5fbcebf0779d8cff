package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"e2ecore/internal/domain"
)

// HTTPDirectory resolves public keys from a directory service over HTTP.
// The service maps GET /keys/{identity} to {"public_key": "<base58>"} and
// answers 404 for identities that have not set up encryption.
type HTTPDirectory struct {
	Base string
	HTTP *http.Client
}

// NewHTTPDirectory returns a directory client for the given base URL.
func NewHTTPDirectory(base string) *HTTPDirectory {
	return &HTTPDirectory{Base: base, HTTP: http.DefaultClient}
}

var _ domain.Directory = (*HTTPDirectory)(nil)

type keyRecord struct {
	PublicKey string `json:"public_key"`
}

// Resolve fetches the identity's published key. A 404 resolves to (nil, nil).
func (d *HTTPDirectory) Resolve(ctx context.Context, id domain.IdentityID) (*domain.X25519Public, error) {
	u := d.Base + "/keys/" + url.PathEscape(id.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := d.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, nil
	default:
		return nil, fmt.Errorf("directory lookup: %s", resp.Status)
	}

	var rec keyRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return nil, err
	}
	pub, err := domain.ParsePublicKey(rec.PublicKey)
	if err != nil {
		return nil, err
	}
	return &pub, nil
}
