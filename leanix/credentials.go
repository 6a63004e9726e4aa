package leanix

import (
	"errors"
	"net/url"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/hashicorp/go-multierror"
)

const minTokenLength = 10

// Credentials address one workspace of a LeanIX instance.
type Credentials struct {
	BaseURL     string
	APIToken    string
	WorkspaceID string
}

// Validate reports every problem with the credentials at once.
func (c Credentials) Validate() error {
	var errs *multierror.Error

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		errs = multierror.Append(errs, errors.New("invalid URL format"))
	} else {
		if u.Scheme != "http" && u.Scheme != "https" {
			errs = multierror.Append(errs, errors.New("URL must use http or https"))
		}
		if u.Host == "" {
			errs = multierror.Append(errs, errors.New("invalid URL format"))
		}
		if strings.HasSuffix(c.BaseURL, "/") {
			errs = multierror.Append(errs, errors.New("URL should not end with a slash"))
		}
	}

	switch {
	case strings.TrimSpace(c.APIToken) == "":
		errs = multierror.Append(errs, errors.New("API token cannot be empty"))
	case len(c.APIToken) < minTokenLength:
		errs = multierror.Append(errs, errors.New("API token appears too short"))
	}

	if _, err := uuid.FromString(c.WorkspaceID); err != nil {
		errs = multierror.Append(errs, errors.New("workspace id must be a UUID"))
	}

	if errs != nil {
		errs.ErrorFormat = func(es []error) string {
			msgs := make([]string, len(es))
			for i, e := range es {
				msgs[i] = e.Error()
			}
			return "invalid configuration: " + strings.Join(msgs, "; ")
		}
	}
	return errs.ErrorOrNil()
}
