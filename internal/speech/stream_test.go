package speech

import (
	"sync"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestChunkStreamDelivery(t *testing.T) {
	convey.Convey("chunks flow through until the buffer is full", t, func() {
		s := NewChunkStream(1)
		s.Send([]byte{1})
		s.Send([]byte{2}) // dropped, buffer full
		s.Close()

		var received [][]byte
		for chunk := range s.Chunks() {
			received = append(received, chunk)
		}
		convey.So(received, convey.ShouldResemble, [][]byte{{1}})
	})
}

func TestChunkStreamCloseSemantics(t *testing.T) {
	convey.Convey("a send after close is a no-op, not a panic", t, func() {
		s := NewChunkStream(4)
		s.Close()
		convey.So(func() { s.Send([]byte{1}) }, convey.ShouldNotPanic)

		_, open := <-s.Chunks()
		convey.So(open, convey.ShouldBeFalse)
	})

	convey.Convey("close is idempotent", t, func() {
		s := NewChunkStream(4)
		s.Close()
		convey.So(s.Close, convey.ShouldNotPanic)
	})

	convey.Convey("a capture goroutine outliving the stop wait cannot panic", t, func() {
		// The sender keeps producing while the consumer side gives up
		// and closes, the way a wedged device read can resume after a
		// bounded-wait stop already returned.
		s := NewChunkStream(1)
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				s.Send([]byte{byte(i)})
			}
		}()
		go func() {
			for range s.Chunks() {
			}
		}()
		s.Close()
		convey.So(func() { wg.Wait() }, convey.ShouldNotPanic)
	})
}
