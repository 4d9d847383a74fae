package document

import (
	"net"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

var ErrInvalidNamespace = errors.New("invalid namespace")

// namespaces become storage buckets, so they follow bucket naming rules
var rxNamespace = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]{1,61}[a-z0-9]$`)

func ValidateNamespace(namespace string) error {
	if !rxNamespace.MatchString(namespace) {
		return errors.Wrapf(ErrInvalidNamespace, "[%s] must be 3 to 63 lowercase letters, digits, dots or hyphens", namespace)
	}

	if strings.Contains(namespace, "..") || strings.Contains(namespace, ".-") || strings.Contains(namespace, "-.") {
		return errors.Wrapf(ErrInvalidNamespace, "[%s] has adjacent separators", namespace)
	}

	if net.ParseIP(namespace) != nil {
		return errors.Wrapf(ErrInvalidNamespace, "[%s] looks like an IP address", namespace)
	}

	return nil
}
