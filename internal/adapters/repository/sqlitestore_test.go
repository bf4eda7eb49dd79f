package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSQLiteStore(t *testing.T) {
	Convey("Given a fresh cache database", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "cache", "responses.db")
		fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

		store, err := OpenSQLite(ctx, path, WithClock(func() time.Time { return fixed }))
		So(err, ShouldBeNil)
		Reset(func() { _ = store.Close() })

		Convey("When reading a missing key", func() {
			_, getErr := store.Get(ctx, "savant/2023")

			Convey("Then ErrNotFound is returned", func() {
				So(errors.Is(getErr, ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When storing and reading back a body", func() {
			So(store.Put(ctx, "savant/2023", []byte("pitch_type,release_speed\nFF,95.1\n")), ShouldBeNil)
			entry, getErr := store.Get(ctx, "savant/2023")

			Convey("Then the body and timestamp round trip", func() {
				So(getErr, ShouldBeNil)
				So(string(entry.Body), ShouldEqual, "pitch_type,release_speed\nFF,95.1\n")
				So(entry.FetchedAt.Equal(fixed), ShouldBeTrue)
				So(entry.Age(fixed.Add(time.Hour)), ShouldEqual, time.Hour)
			})
		})

		Convey("When a key is written twice", func() {
			So(store.Put(ctx, "register/people-a.csv", []byte("old")), ShouldBeNil)
			So(store.Put(ctx, "register/people-a.csv", []byte("new")), ShouldBeNil)
			entry, getErr := store.Get(ctx, "register/people-a.csv")

			Convey("Then the latest body wins", func() {
				So(getErr, ShouldBeNil)
				So(string(entry.Body), ShouldEqual, "new")
			})
		})

		Convey("When a second process opens the same path", func() {
			_, secondErr := OpenSQLite(ctx, path)

			Convey("Then it reports the cache as locked", func() {
				So(errors.Is(secondErr, ErrLocked), ShouldBeTrue)
			})
		})

		Convey("When the store is closed and reopened", func() {
			So(store.Put(ctx, "k", []byte("v")), ShouldBeNil)
			So(store.Close(), ShouldBeNil)

			reopened, openErr := OpenSQLite(ctx, path)
			So(openErr, ShouldBeNil)
			entry, getErr := reopened.Get(ctx, "k")
			_ = reopened.Close()

			Convey("Then entries persist", func() {
				So(getErr, ShouldBeNil)
				So(string(entry.Body), ShouldEqual, "v")
			})
		})
	})
}

func TestNopStore(t *testing.T) {
	Convey("Given a NopStore", t, func() {
		ctx := context.Background()
		var store Store = NopStore{}

		Convey("Then writes succeed and reads always miss", func() {
			So(store.Put(ctx, "k", []byte("v")), ShouldBeNil)
			_, err := store.Get(ctx, "k")
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			So(store.Close(), ShouldBeNil)
		})
	})
}
