package register

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/okian/pitchpredict/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

const registerHeader = "key_person,key_uuid,key_mlbam,key_retro,name_last,name_first,mlb_played_first,mlb_played_last\n"

type fakeFetcher struct {
	bodies map[string]string
	calls  int
	err    error
}

func (f *fakeFetcher) Get(_ context.Context, url string, _ time.Duration) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	shard := url[strings.LastIndex(url, "/")+1:]
	body, ok := f.bodies[shard]
	if !ok {
		return []byte(registerHeader), nil
	}
	return []byte(registerHeader + body), nil
}

func newFixture() *fakeFetcher {
	return &fakeFetcher{bodies: map[string]string{
		"people-1.csv": "a1,u1,543037,coleg001,Cole,Gerrit,2013,2024\n" +
			"a2,u2,,colex001,Cole,Gerrit,,\n",
		"people-4.csv": "b1,u3,660271,ohtas001,Ohtani,Shohei,2018,2024\n" +
			"b2,u4,111111,martj001,Martinez,J. D.,1990,1995\n" +
			"b3,u5,502110,martj006,Martinez,J. D.,2011,2024\n",
		"people-9.csv": "c1,u6,682829,delae001,De La Cruz,Elly,2023,2024\n" +
			"c2,u7,665742,sotoj001,Soto,Juan,2018,2024\n" +
			"c3,u8,592450,judga001,Judge,Aaron,2016,2024\n" +
			"c4,u9,121347,acunr001,Acuña,Ronald,2018,2024\n",
	}}
}

func TestLookupID(t *testing.T) {
	if err := logger.InitWriter(io.Discard); err != nil {
		t.Fatalf("init logger: %v", err)
	}

	Convey("Given a register with a handful of players", t, func() {
		ctx := context.Background()
		fetcher := newFixture()
		lookup := New(fetcher, WithBaseURL("https://example.test/data/"))

		Convey("When looking up an exact name", func() {
			id, err := lookup.LookupID(ctx, "Gerrit Cole")

			Convey("Then the MLBAM id is returned", func() {
				So(err, ShouldBeNil)
				So(id, ShouldEqual, 543037)
			})

			Convey("Then all sixteen shards were downloaded once", func() {
				_, _ = lookup.LookupID(ctx, "Aaron Judge")
				So(fetcher.calls, ShouldEqual, 16)
				So(len(lookup.people), ShouldEqual, 8)
			})
		})

		Convey("When the name differs in case, accents and punctuation", func() {
			acuna, err1 := lookup.LookupID(ctx, "ronald acuna jr.")
			jd, err2 := lookup.LookupID(ctx, "JD Martinez")
			elly, err3 := lookup.LookupID(ctx, "Elly De La Cruz")

			Convey("Then the folded name still matches", func() {
				So(err1, ShouldBeNil)
				So(acuna, ShouldEqual, 121347)
				So(err2, ShouldBeNil)
				So(err3, ShouldBeNil)
				So(elly, ShouldEqual, 682829)
			})

			Convey("Then the most recently active namesake wins", func() {
				So(jd, ShouldEqual, 502110)
			})
		})

		Convey("When initials are written the way the register spells them", func() {
			spaced, err1 := lookup.LookupID(ctx, "J. D. Martinez")
			dotted, err2 := lookup.LookupID(ctx, "J.D. Martinez")
			elly, err3 := lookup.LookupID(ctx, "Elly De-La-Cruz")

			Convey("Then the split between first and last name does not matter", func() {
				So(err1, ShouldBeNil)
				So(spaced, ShouldEqual, 502110)
				So(err2, ShouldBeNil)
				So(dotted, ShouldEqual, 502110)
				So(err3, ShouldBeNil)
				So(elly, ShouldEqual, 682829)
			})
		})

		Convey("When the name is misspelled", func() {
			_, strictErr := lookup.LookupID(ctx, "Gerit Cole")

			fuzzy := New(newFixture(), WithFuzzy(true))
			id, fuzzyErr := fuzzy.LookupID(ctx, "Gerit Cole")

			Convey("Then only fuzzy lookup finds the player", func() {
				So(errors.Is(strictErr, ErrPlayerNotFound), ShouldBeTrue)
				So(fuzzyErr, ShouldBeNil)
				So(id, ShouldEqual, 543037)
			})
		})

		Convey("When the name is unknown even to fuzzy lookup", func() {
			fuzzy := New(newFixture(), WithFuzzy(true))
			_, err := fuzzy.LookupID(ctx, "Zzyzx Qwerty")

			Convey("Then ErrPlayerNotFound names the player", func() {
				So(errors.Is(err, ErrPlayerNotFound), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "Zzyzx Qwerty")
			})
		})

		Convey("When the name has a single word", func() {
			_, err := lookup.LookupID(ctx, "Ohtani")

			Convey("Then ErrInvalidName is returned without downloading", func() {
				So(errors.Is(err, ErrInvalidName), ShouldBeTrue)
				So(fetcher.calls, ShouldEqual, 0)
			})
		})

		Convey("When the download fails", func() {
			fetcher.err = errors.New("connection refused")
			_, err := lookup.LookupID(ctx, "Juan Soto")

			Convey("Then the error is wrapped", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "connection refused")
			})
		})
	})
}

func TestParsePeople(t *testing.T) {
	Convey("Given a file without the id column", t, func() {
		_, err := parsePeople(strings.NewReader("name_first,name_last\nA,B\n"))
		So(errors.Is(err, ErrMalformedFile), ShouldBeTrue)
	})

	Convey("Given an empty file", t, func() {
		people, err := parsePeople(strings.NewReader(""))
		So(err, ShouldBeNil)
		So(people, ShouldBeEmpty)
	})
}

func TestNames(t *testing.T) {
	Convey("Given raw names", t, func() {
		So(fold("  José  Ramírez "), ShouldEqual, "jose ramirez")
		So(fold("Jean-Carlos O'Neill"), ShouldEqual, "jean carlos oneill")

		first, last, err := splitName("Ken Griffey Jr.")
		So(err, ShouldBeNil)
		So(first, ShouldEqual, "ken")
		So(last, ShouldEqual, "griffey")

		_, _, err = splitName("Jr.")
		So(errors.Is(err, ErrInvalidName), ShouldBeTrue)

		So(DisplayName("gerrit   cole"), ShouldEqual, "Gerrit Cole")
	})

	Convey("Given bigram fingerprints", t, func() {
		So(cosine(newFingerprint("gerrit cole"), newFingerprint("gerrit cole")), ShouldAlmostEqual, 1.0, 1e-9)
		So(cosine(newFingerprint("gerit cole"), newFingerprint("gerrit cole")), ShouldBeGreaterThan, 0.8)
		So(cosine(newFingerprint(""), newFingerprint("x")), ShouldEqual, 0.0)
	})
}
