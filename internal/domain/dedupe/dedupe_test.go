package dedupe_test

import (
	"context"
	"sync"
	"testing"

	dedupe "github.com/okian/scobo/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new InMemoryDeduper", t, func() {
		Convey("When creating a deduper with default options", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("Then it should start empty", func() {
				So(d, ShouldNotBeNil)
				So(d.Size(), ShouldEqual, 0)
			})
		})

		Convey("When recording update ids", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("And the id is new", func() {
				seen := d.SeenAndRecord(ctx, 1001)

				Convey("Then it should return false and record it", func() {
					So(seen, ShouldBeFalse)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And the id is redelivered", func() {
				d.SeenAndRecord(ctx, 1001)
				seen := d.SeenAndRecord(ctx, 1001)

				Convey("Then it should return true", func() {
					So(seen, ShouldBeTrue)
					So(d.Size(), ShouldEqual, 1)
				})
			})
		})

		Convey("When unrecording ids", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(4))
			d.SeenAndRecord(ctx, 1)
			d.SeenAndRecord(ctx, 2)

			Convey("And the id exists", func() {
				d.Unrecord(ctx, 1)

				Convey("Then a redelivery is processed again", func() {
					So(d.Size(), ShouldEqual, 1)
					So(d.SeenAndRecord(ctx, 1), ShouldBeFalse)
				})
			})

			Convey("And the id does not exist", func() {
				d.Unrecord(ctx, 99)

				Convey("Then the size is unchanged", func() {
					So(d.Size(), ShouldEqual, 2)
				})
			})
		})

		Convey("When using bounded mode with eviction", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
			for _, id := range []int64{1, 2, 3, 4} {
				So(d.SeenAndRecord(ctx, id), ShouldBeFalse)
			}

			Convey("Then the oldest id is forgotten first", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, 4), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, 3), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, 1), ShouldBeFalse)
			})
		})

		Convey("When an unrecorded id is recorded again in bounded mode", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(2))
			d.SeenAndRecord(ctx, 1)
			d.Unrecord(ctx, 1)
			d.SeenAndRecord(ctx, 2)
			d.SeenAndRecord(ctx, 1)

			Convey("Then the stale slot does not evict the fresh record", func() {
				So(d.Size(), ShouldEqual, 2)
				So(d.SeenAndRecord(ctx, 1), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, 2), ShouldBeTrue)
			})
		})

		Convey("When using unbounded mode", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
			for id := int64(0); id < 5000; id++ {
				d.SeenAndRecord(ctx, id)
			}

			Convey("Then nothing is evicted", func() {
				So(d.Size(), ShouldEqual, 5000)
				So(d.SeenAndRecord(ctx, 0), ShouldBeTrue)
			})
		})

		Convey("When using negative max size", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(-1))
			for id := int64(0); id < 100; id++ {
				d.SeenAndRecord(ctx, id)
			}

			Convey("Then it should be unbounded", func() {
				So(d.Size(), ShouldEqual, 100)
			})
		})
	})

	Convey("Given a deduper with concurrent access", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))

		Convey("When many goroutines race on the same ids", func() {
			var (
				wg    sync.WaitGroup
				mu    sync.Mutex
				fresh int
			)
			for g := 0; g < 10; g++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for id := int64(0); id < 100; id++ {
						if !d.SeenAndRecord(ctx, id) {
							mu.Lock()
							fresh++
							mu.Unlock()
						}
					}
				}()
			}
			wg.Wait()

			Convey("Then each id is reported new exactly once", func() {
				So(fresh, ShouldEqual, 100)
				So(d.Size(), ShouldEqual, 100)
			})
		})
	})
}
