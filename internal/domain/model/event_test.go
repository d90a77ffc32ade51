package model_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	model "github.com/okian/scobo/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestEventRecord(t *testing.T) {
	convey.Convey("Given a new EventRecord", t, func() {
		rec := model.NewEventRecord(42, "alice", model.KindWon, "/won")

		convey.Convey("Then it should carry an id and a timestamp", func() {
			convey.So(rec.ID, convey.ShouldNotBeEmpty)
			convey.So(rec.TS.IsZero(), convey.ShouldBeFalse)
			convey.So(rec.ChatID, convey.ShouldEqual, 42)
			convey.So(rec.Kind, convey.ShouldEqual, model.KindWon)
		})

		convey.Convey("Then two records should not share an id", func() {
			other := model.NewEventRecord(42, "alice", model.KindWon, "/won")
			convey.So(other.ID, convey.ShouldNotEqual, rec.ID)
		})

		convey.Convey("When the record is a Won", func() {
			convey.Convey("Then the participant is the sender", func() {
				convey.So(rec.Participant(), convey.ShouldEqual, "alice")
			})
		})

		convey.Convey("When the record is an Undo with a target", func() {
			undo := model.NewEventRecord(42, "bob", model.KindUndo, "/undo")
			undo.Target = "alice"

			convey.Convey("Then the participant is the target", func() {
				convey.So(undo.Participant(), convey.ShouldEqual, "alice")
			})
		})

		convey.Convey("When the record is an Undo without a target", func() {
			undo := model.NewEventRecord(42, "bob", model.KindUndo, "/undo")

			convey.Convey("Then the participant falls back to the sender", func() {
				convey.So(undo.Participant(), convey.ShouldEqual, "bob")
			})
		})
	})
}

func TestResolveSenderName(t *testing.T) {
	convey.Convey("Given the sender fallback chain", t, func() {
		convey.So(model.ResolveSenderName("ali", "Alice"), convey.ShouldEqual, "ali")
		convey.So(model.ResolveSenderName("", "Alice"), convey.ShouldEqual, "Alice")
		convey.So(model.ResolveSenderName("  ", " Alice "), convey.ShouldEqual, "Alice")
		convey.So(model.ResolveSenderName("", ""), convey.ShouldEqual, "")
	})
}

func TestCodec(t *testing.T) {
	convey.Convey("Given an encoded record", t, func() {
		rec := model.NewEventRecord(-1001, "Ålice ☕", model.KindUndo, "/undo")
		rec.Target = "bob"
		rec.UpdateID = 77
		rec.TS = time.Date(2017, 7, 21, 12, 0, 0, 0, time.UTC)

		line, err := model.Encode(rec)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then it is a single line", func() {
			convey.So(strings.Contains(string(line), "\n"), convey.ShouldBeFalse)
		})

		convey.Convey("Then decoding returns the same record", func() {
			got, err := model.Decode(line)
			convey.So(err, convey.ShouldBeNil)
			convey.So(got, convey.ShouldResemble, rec)
		})
	})

	convey.Convey("Given malformed lines", t, func() {
		cases := []string{
			`not json`,
			`{"chat_id":0,"sender":"a","command":"won"}`,
			`{"chat_id":5,"sender":"a","command":"board"}`,
			`{"chat_id":5,"sender":"a"}`,
			`{"chat_id":"five","command":"won"}`,
		}
		for _, c := range cases {
			_, err := model.Decode([]byte(c))
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, model.ErrMalformedRecord), convey.ShouldBeTrue)
		}
	})
}

func TestCommandKind(t *testing.T) {
	if !model.KindWon.IsScoring() || !model.KindUndo.IsScoring() {
		t.Fatal("won and undo must be scoring kinds")
	}
	if model.KindUnknown.IsScoring() {
		t.Fatal("unknown must not be a scoring kind")
	}
}
