package savant

import (
	"fmt"
	"net/url"
	"strconv"
)

// seasonURL builds the Statcast search CSV request for one pitcher season.
// Regular season, postseason and spring training games are included.
func seasonURL(base string, pitcherID, season int) string {
	q := url.Values{}
	q.Set("all", "true")
	q.Set("type", "details")
	q.Set("player_type", "pitcher")
	q.Set("pitchers_lookup[]", strconv.Itoa(pitcherID))
	q.Set("hfSea", fmt.Sprintf("%d|", season))
	q.Set("hfGT", "R|PO|S|")
	q.Set("game_date_gt", fmt.Sprintf("%d-01-01", season))
	q.Set("game_date_lt", fmt.Sprintf("%d-12-31", season))
	q.Set("min_pitches", "0")
	q.Set("min_results", "0")
	q.Set("min_abs", "0")
	q.Set("group_by", "name")
	q.Set("sort_col", "pitches")
	q.Set("sort_order", "desc")
	return base + "?" + q.Encode()
}
