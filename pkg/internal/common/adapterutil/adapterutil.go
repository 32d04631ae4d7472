/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package adapterutil

import (
	"net/url"
	"strings"
)

// ValidHTTPURL checks if the string is a valid http url.
func ValidHTTPURL(str string) bool {
	u, err := url.Parse(str)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ContentDispositionAttachment returns an attachment Content-Disposition value for filename.
func ContentDispositionAttachment(filename string) string {
	return `attachment; filename="` + strings.NewReplacer(`"`, "", "\\", "", "\r", "", "\n", "").Replace(filename) + `"`
}
