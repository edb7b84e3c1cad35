package browser

import (
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// resourceAliases maps config names to CDP resource types.
var resourceAliases = map[string]proto.NetworkResourceType{
	"images":      proto.NetworkResourceTypeImage,
	"fonts":       proto.NetworkResourceTypeFont,
	"media":       proto.NetworkResourceTypeMedia,
	"stylesheets": proto.NetworkResourceTypeStylesheet,
}

// blockedTypes resolves config names (plural aliases or raw CDP type names,
// any case) to a set of CDP resource types.
func blockedTypes(names []string) map[proto.NetworkResourceType]bool {
	set := make(map[proto.NetworkResourceType]bool, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		if t, ok := resourceAliases[n]; ok {
			set[t] = true
			continue
		}
		// Raw CDP names are capitalised: Image, Script, XHR...
		for _, t := range []proto.NetworkResourceType{
			proto.NetworkResourceTypeImage, proto.NetworkResourceTypeFont,
			proto.NetworkResourceTypeMedia, proto.NetworkResourceTypeStylesheet,
			proto.NetworkResourceTypeScript, proto.NetworkResourceTypeXHR,
			proto.NetworkResourceTypeFetch, proto.NetworkResourceTypeOther,
		} {
			if strings.EqualFold(string(t), n) {
				set[t] = true
			}
		}
	}
	return set
}

// applyResourceBlocking fails requests of the blocked types. The hijack
// router runs until the page closes.
func applyResourceBlocking(page *rod.Page, names []string) error {
	blocked := blockedTypes(names)
	if len(blocked) == 0 {
		return nil
	}

	router := page.HijackRequests()
	if err := router.Add("*", "", func(h *rod.Hijack) {
		if blocked[h.Request.Type()] {
			h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		h.ContinueRequest(&proto.FetchContinueRequest{})
	}); err != nil {
		return err
	}

	go router.Run()
	return nil
}
