package service

// RouteMapping maps a content filename to the storefront route its document
// describes. Files without an entry get an empty route.
var RouteMapping = map[string]string{
	"home.md":            "/",
	"remidi-4.md":        "/products/remidi-4",
	"remidi-4-trial.md":  "/products/remidi-4-trial",
	"rechannel.md":       "/products/rechannel",
	"jazz-midi-pack.md":  "/products/jazz-midi-pack",
	"sample-loops.md":    "/products/sample-loops",
	"faq.md":             "/faq",
	"support.md":         "/support",
	"account.md":         "/account",
	"downloads.md":       "/account/downloads",
	"licenses.md":        "/account/licenses",
	"checkout.md":        "/checkout",
	"getting-started.md": "/guides/getting-started",
	"troubleshooting.md": "/guides/troubleshooting",
	"refund-policy.md":   "/policies/refunds",
}

// routeDescriptions drive the navigation table rendered into every prompt,
// in a fixed order so prompt composition stays deterministic.
var routeDescriptions = []struct {
	route       string
	description string
}{
	{"/", "Home page with featured products"},
	{"/products/remidi-4", "reMIDI 4 MIDI sampler plugin"},
	{"/products/remidi-4-trial", "Free trial of reMIDI 4"},
	{"/products/rechannel", "reChannel MIDI effect plugin"},
	{"/products/jazz-midi-pack", "Jazz MIDI file collection"},
	{"/products/sample-loops", "Sample and loop packs"},
	{"/faq", "Frequently asked questions"},
	{"/support", "Customer support and contact"},
	{"/account", "Customer account overview"},
	{"/account/downloads", "Purchased download files"},
	{"/account/licenses", "Issued license keys"},
	{"/checkout", "Cart and checkout"},
	{"/guides/getting-started", "Getting started guides"},
	{"/guides/troubleshooting", "Troubleshooting guides"},
	{"/policies/refunds", "Refund policy"},
}

// RouteFor returns the mapped route for a content filename, or "" if unmapped.
func RouteFor(filename string) string {
	return RouteMapping[filename]
}
