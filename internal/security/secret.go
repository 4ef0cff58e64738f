package security

import "net/url"

// Mask is the fixed placeholder substituted for credentials in any
// logged or printed form.
const Mask = "****"

// Secret holds a credential that must never reach a terminal or log in
// cleartext. Every formatting path (fmt %s/%v/%#v, yaml) yields the mask;
// the raw value is only reachable through Value().
type Secret struct {
	value string
}

// NewSecret wraps a raw credential value.
func NewSecret(value string) Secret {
	return Secret{value: value}
}

// Value returns the raw credential. Callers own keeping it out of logs.
func (s Secret) Value() string {
	return s.value
}

// IsZero reports whether no credential was provided.
func (s Secret) IsZero() bool {
	return s.value == ""
}

func (s Secret) String() string {
	return Mask
}

func (s Secret) GoString() string {
	return "security.Secret(" + Mask + ")"
}

// MarshalYAML keeps the credential out of any persisted config.
func (s Secret) MarshalYAML() (interface{}, error) {
	return Mask, nil
}

// AuthenticatedURL injects the credential into the user-info component of
// an HTTPS repository URL. The result is handed to the git client only and
// must pass through MaskCredentialURL before any logging.
func AuthenticatedURL(rawURL string, credential Secret) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if credential.IsZero() {
		return rawURL, nil
	}
	u.User = url.User(credential.Value())
	return u.String(), nil
}

// MaskCredentialURL replaces any user-info component of a URL with the
// fixed mask. Safe to call on URLs that carry no credential.
func MaskCredentialURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if u.User == nil {
		return rawURL
	}
	u.User = url.User(Mask)
	return u.String()
}
