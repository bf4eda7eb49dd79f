package service_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/pitchpredict/internal/adapters/register"
	"github.com/okian/pitchpredict/internal/adapters/repository"
	"github.com/okian/pitchpredict/internal/adapters/savant"
	"github.com/okian/pitchpredict/internal/adapters/transport"
	service "github.com/okian/pitchpredict/internal/app"
	"github.com/okian/pitchpredict/internal/domain/digest"
	"github.com/okian/pitchpredict/internal/domain/model"
	"github.com/okian/pitchpredict/pkg/metrics"
)

const statcastHeader = "pitch_type,game_date,release_speed,pitcher,batter,balls,strikes,bat_score,fld_score,game_year,game_pk,at_bat_number,pitch_number,description,type,bb_type,launch_speed,launch_angle,estimated_woba_using_speedangle\n"

// upstream serves a two-player register and a single 2024 season for the pitcher.
func upstream(hits *int32) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/register/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		fmt.Fprint(w, "key_mlbam,name_first,name_last,mlb_played_last\n")
		if strings.HasSuffix(r.URL.Path, "people-3.csv") {
			fmt.Fprint(w, "543037,Gerrit,Cole,2024\n592450,Aaron,Judge,2024\n")
		}
	})
	mux.HandleFunc("/statcast", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		fmt.Fprint(w, statcastHeader)
		if r.URL.Query().Get("hfSea") != "2024|" {
			return
		}
		fmt.Fprint(w,
			"FF,2024-05-01,97.0,543037,592450,1,2,2,2,2024,1,1,4,swinging_strike,S,,,,\n"+
				"FF,2024-05-02,96.5,543037,592450,1,2,2,2,2024,2,1,4,hit_into_play,X,fly_ball,104.0,28,0.9\n"+
				"SL,2024-05-03,88.0,543037,592450,1,2,2,2,2024,3,1,4,foul,S,,,,\n")
	})
	return httptest.NewServer(mux)
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given the real adapters against a local upstream", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		var hits int32
		srv := upstream(&hits)
		Reset(srv.Close)

		now := func() time.Time { return time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC) }

		store, err := repository.OpenSQLite(ctx, filepath.Join(t.TempDir(), "cache.db"), repository.WithClock(now))
		So(err, ShouldBeNil)
		Reset(func() { _ = store.Close() })

		m := metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))
		client := transport.New(
			transport.WithStore(store),
			transport.WithMetrics(m),
			transport.WithClock(now),
			transport.WithHTTPClient(srv.Client()),
		)

		build := func() *service.Service {
			return service.New(
				service.WithResolver(register.New(client, register.WithBaseURL(srv.URL+"/register"))),
				service.WithSource(savant.New(client,
					savant.WithBaseURL(srv.URL+"/statcast"),
					savant.WithSeasons(2023, 0),
					savant.WithClock(now),
					savant.WithMetrics(m))),
				service.WithMetrics(m),
			)
		}

		Convey("When resolving both players and analyzing", func() {
			svc := build()
			pitcher, err1 := svc.ResolvePlayer(ctx, "Gerrit Cole")
			batter, err2 := svc.ResolvePlayer(ctx, "aaron judge")
			report, err3 := svc.Analyze(ctx, situationFor(pitcher, batter))

			Convey("Then the whole pipeline produces the tables", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(err3, ShouldBeNil)
				So(pitcher, ShouldEqual, pitcherID)
				So(batter, ShouldEqual, batterID)
				So(report.History, ShouldEqual, 3)
				So(report.Selected, ShouldEqual, 3)
				n, _ := report.PitchData.Value("FF", digest.ColCount)
				So(n, ShouldEqual, 2.0)
				So(report.BattedBallSplit.Table.Keys(), ShouldResemble, []string{digest.FlyBall})
			})

			Convey("Then a second run is served from the cache", func() {
				before := atomic.LoadInt32(&hits)
				again := build()
				_, err := again.ResolvePlayer(ctx, "Gerrit Cole")
				So(err, ShouldBeNil)
				_, err = again.Analyze(ctx, situationFor(pitcher, batter))
				So(err, ShouldBeNil)
				So(atomic.LoadInt32(&hits), ShouldEqual, before)
			})
		})
	})
}

func situationFor(pitcher, batter int) model.PlayerContext {
	c := situation()
	c.PitcherID, c.BatterID = pitcher, batter
	return c
}
