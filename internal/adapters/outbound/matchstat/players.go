package matchstat

import "strings"

// playerIDs seeds the provider's numeric IDs for players who show up in
// Kalshi tennis markets. Keys are lowercase full names as Kalshi prints
// them. Players missing here simply resolve to no head-to-head opinion.
var playerIDs = map[string]int{
	// ATP
	"novak djokovic": 5992,
	"rafael nadal": 677,
	"gael monfils": 5917,
	"jannik sinner": 52602,
	"carlos alcaraz": 63134,
	"alexander zverev": 26669,
	"daniil medvedev": 29812,
	"stefanos tsitsipas": 35086,
	"andrey rublev": 26923,
	"casper ruud": 34978,
	"taylor fritz": 31056,
	"alex de minaur": 34920,
	"holger rune": 63170,
	"hubert hurkacz": 29528,
	"tommy paul": 30470,
	"ben shelton": 67544,
	"frances tiafoe": 29998,
	"grigor dimitrov": 12577,
	"karen khachanov": 27834,
	"felix auger-aliassime": 51204,
	"arthur fils": 70352,
	"lorenzo musetti": 56731,
	"sebastian korda": 54076,
	"matteo berrettini": 31694,
	"nick kyrgios": 24008,
	"stan wawrinka": 5919,
	"andy murray": 5837,

	// WTA
	"iga swiatek": 60992,
	"aryna sabalenka": 42941,
	"coco gauff": 58292,
	"elena rybakina": 49501,
	"jessica pegula": 30851,
	"ons jabeur": 31026,
	"marketa vondrousova": 38894,
	"madison keys": 18986,
	"naomi osaka": 36601,
	"victoria azarenka": 7715,
	"jelena ostapenko": 29951,
	"petra kvitova": 8035,
	"karolina pliskova": 13489,
	"maria sakkari": 26938,
	"daria kasatkina": 27176,
	"mirra andreeva": 74390,
	"emma raducanu": 62292,
	"qinwen zheng": 63227,
	"barbora krejcikova": 27187,
	"elina svitolina": 15926,
}

// findPlayerID resolves a display name to a provider ID. Exact match
// first, then containment either way, then a bare surname match, which
// covers "Sinner" against "jannik sinner".
func findPlayerID(name string) (int, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return 0, false
	}
	if id, ok := playerIDs[key]; ok {
		return id, true
	}
	for known, id := range playerIDs {
		if strings.Contains(known, key) || strings.Contains(key, known) {
			return id, true
		}
	}
	last := key
	if i := strings.LastIndex(key, " "); i >= 0 {
		last = key[i+1:]
	}
	for known, id := range playerIDs {
		if strings.HasSuffix(known, " "+last) {
			return id, true
		}
	}
	return 0, false
}
