package suggest

import (
	"strings"
	"unicode"

	"github.com/Domenick1991/tripseats/internal/domain"
)

// Need is one thing a passenger asked for.
type Need string

const (
	NeedWindow     Need = "window"
	NeedAisle      Need = "aisle"
	NeedFront      Need = "front"
	NeedBack       Need = "back"
	NeedAccessible Need = "accessible"
	NeedCompanion  Need = "companion"
)

var positional = map[Need]bool{NeedWindow: true, NeedAisle: true, NeedFront: true, NeedBack: true}

// keywords are matched as word prefixes so German compounds like "Fensterplatz" count.
var keywords = []struct {
	need  Need
	words []string
}{
	{NeedWindow, []string{"window", "fenster"}},
	{NeedAisle, []string{"aisle", "gang"}},
	{NeedFront, []string{"front", "vorn"}},
	{NeedBack, []string{"back", "rear", "hinten"}},
	{NeedAccessible, []string{"wheelchair", "accessib", "rollstuhl", "barrierefrei", "rollator"}},
	{NeedCompanion, []string{"together", "zusammen", "neben", "beside"}},
}

// Request is a passenger together with the needs parsed from the booking.
type Request struct {
	Passenger domain.UnassignedPassenger
	// Primary is the need named by the preference type, or the first one found in the
	// text. Empty when the passenger stated nothing usable.
	Primary Need
	Needs   []Need
}

func ParseRequest(p domain.UnassignedPassenger) Request {
	found := make(map[Need]bool)
	tokens := strings.FieldsFunc(strings.ToLower(p.PreferenceText+" "+p.Accommodation), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, tok := range tokens {
		for _, kw := range keywords {
			for _, w := range kw.words {
				if strings.HasPrefix(tok, w) {
					found[kw.need] = true
				}
			}
		}
	}

	req := Request{Passenger: p}
	switch p.PreferenceType {
	case domain.PreferenceAccessibility:
		req.Primary = NeedAccessible
	case domain.PreferenceCompanion:
		req.Primary = NeedCompanion
	case domain.PreferencePosition:
		for _, kw := range keywords {
			if positional[kw.need] && found[kw.need] {
				req.Primary = kw.need
				break
			}
		}
	default:
		for _, kw := range keywords {
			if found[kw.need] {
				req.Primary = kw.need
				break
			}
		}
	}

	if req.Primary != "" {
		found[req.Primary] = true
		req.Needs = append(req.Needs, req.Primary)
	}
	for _, kw := range keywords {
		if found[kw.need] && kw.need != req.Primary {
			req.Needs = append(req.Needs, kw.need)
		}
	}
	return req
}
