// Command amazon is an autoclip plugin that strips Amazon Japan product
// links down to https://www.amazon.co.jp/dp/<ASIN>.
//
// Build it with:
//
//	go build -buildmode=plugin -o amazon.so ./plugins/amazon
package main

import (
	"regexp"

	"go.klb.dev/autoclip/sdk"
)

var productURL = regexp.MustCompile(`(https://www.amazon.co.jp/)(?:.+/)?(dp/[A-Z0-9]+)/?`)

// PluginDeclaration is looked up by the host.
var PluginDeclaration = sdk.Declare(func(r sdk.Registrar) {
	r.Register("amazon", sdk.Func(shorten))
})

func shorten(contents string) (string, bool) {
	m := productURL.FindStringSubmatch(contents)
	if m == nil {
		return "", false
	}
	out := m[1] + m[2]
	if out == contents {
		return "", false
	}
	return out, true
}

func main() {}
