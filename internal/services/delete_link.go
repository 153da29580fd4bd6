package services

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/terraincognita07/goaltrack/internal/security"
)

var ErrDeleteLinkSignatureInvalid = errors.New("delete link signature invalid")

// DeleteLinkSigner signs the self-delete links embedded in emails. Links do
// not expire; rotating the secret revokes all of them.
type DeleteLinkSigner struct {
	secret  []byte
	baseURL string
}

func NewDeleteLinkSigner(secret string, baseURL string) *DeleteLinkSigner {
	return &DeleteLinkSigner{
		secret:  []byte(secret),
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
	}
}

func (signer *DeleteLinkSigner) Sign(userID uint) string {
	return security.SignHex(signer.secret, strconv.FormatUint(uint64(userID), 10))
}

func (signer *DeleteLinkSigner) Verify(userID uint, signature string) error {
	if !security.VerifyHex(signer.secret, strconv.FormatUint(uint64(userID), 10), signature) {
		return ErrDeleteLinkSignatureInvalid
	}
	return nil
}

func (signer *DeleteLinkSigner) URL(userID uint) string {
	query := url.Values{}
	query.Set("id", strconv.FormatUint(uint64(userID), 10))
	query.Set("sig", signer.Sign(userID))
	return signer.baseURL + "/api/user/delete-direct?" + query.Encode()
}

func (signer *DeleteLinkSigner) DashboardURL() string {
	return signer.baseURL + "/dashboard"
}

func (signer *DeleteLinkSigner) LoginURL() string {
	return signer.baseURL + "/login"
}

// DeletedURL is where a completed self-delete lands.
func (signer *DeleteLinkSigner) DeletedURL() string {
	return signer.baseURL + "/?deleted=true"
}
