package player

import (
	"errors"
	"reflect"
	"testing"
)

// fakeElement records the calls the player makes and can simulate an
// autoplay-policy rejection.
type fakeElement struct {
	source      string
	loads       int
	plays       int
	pauses      int
	releases    int
	currentTime float64
	volume      float64
	playErr     error
}

func (f *fakeElement) SetSource(url string)           { f.source = url }
func (f *fakeElement) Load()                          { f.loads++ }
func (f *fakeElement) Play() error                    { f.plays++; return f.playErr }
func (f *fakeElement) Pause()                         { f.pauses++ }
func (f *fakeElement) SetCurrentTime(seconds float64) { f.currentTime = seconds }
func (f *fakeElement) SetVolume(volume float64)       { f.volume = volume }
func (f *fakeElement) Release()                       { f.source = "" }

func newTestPlayer() (*Player, *fakeElement) {
	el := &fakeElement{}
	return New(el), el
}

func track(id string) Track {
	return Track{ID: id, Title: "Track " + id, ArtistName: "Artist", AudioURL: "https://cdn.example/" + id + ".mp3"}
}

func TestPlayTrackThenStopYieldsIdle(t *testing.T) {
	p, el := newTestPlayer()

	p.PlayTrack(track("t1"))
	snap := p.Snapshot()
	if snap.State() != StatePlaying {
		t.Fatalf("expected playing after PlayTrack, got state %v", snap.State())
	}
	if el.source == "" || el.loads != 1 {
		t.Fatalf("element source not loaded: source=%q loads=%d", el.source, el.loads)
	}

	p.StopTrack()
	snap = p.Snapshot()
	if snap.CurrentTrack != nil {
		t.Fatal("StopTrack should clear the current track")
	}
	if snap.IsPlaying {
		t.Fatal("StopTrack should clear the playing flag")
	}
	if snap.CurrentTime != 0 {
		t.Fatalf("StopTrack should reset time, got %v", snap.CurrentTime)
	}
	if snap.State() != StateIdle {
		t.Fatalf("expected idle state, got %v", snap.State())
	}
	if el.source != "" {
		t.Fatal("StopTrack should release the media source")
	}
}

func TestTogglePlayPauseAlternatesStrictly(t *testing.T) {
	p, _ := newTestPlayer()
	p.PlayTrack(track("t1"))

	want := true
	for i := 0; i < 6; i++ {
		p.TogglePlayPause()
		want = !want
		if got := p.Snapshot().IsPlaying; got != want {
			t.Fatalf("toggle %d: isPlaying = %v, want %v", i+1, got, want)
		}
	}
}

func TestTogglePlayPauseRejectionDegradesSilently(t *testing.T) {
	p, el := newTestPlayer()
	p.PlayTrack(track("t1"))
	p.TogglePlayPause() // paused

	el.playErr = errors.New("autoplay policy")
	p.TogglePlayPause()
	if p.Snapshot().IsPlaying {
		t.Fatal("rejected resume should leave the player paused")
	}
	if p.Snapshot().CurrentTrack == nil {
		t.Fatal("rejected resume should not drop the current track")
	}
}

func TestPlayTrackRejectionDegradesToPaused(t *testing.T) {
	p, el := newTestPlayer()
	el.playErr = errors.New("autoplay policy")

	p.PlayTrack(track("t1"))
	snap := p.Snapshot()
	if snap.IsPlaying {
		t.Fatal("rejected start should leave isPlaying false")
	}
	if snap.State() != StatePaused {
		t.Fatalf("expected loaded-paused, got %v", snap.State())
	}
}

func TestPlayTrackAdoptsExistingQueuePosition(t *testing.T) {
	p, _ := newTestPlayer()
	p.SetQueue([]Track{track("a"), track("b"), track("c")})

	p.PlayTrack(track("b"))
	snap := p.Snapshot()
	if snap.CurrentIndex != 1 {
		t.Fatalf("expected index 1 for already-queued track, got %d", snap.CurrentIndex)
	}
	if len(snap.Queue) != 3 {
		t.Fatalf("queue length changed: %d", len(snap.Queue))
	}
}

func TestAddToQueueIsAppendOnly(t *testing.T) {
	p, _ := newTestPlayer()
	p.SetQueue([]Track{track("a"), track("b")})

	before := p.Snapshot().Queue
	p.AddToQueue(track("c"))
	after := p.Snapshot().Queue

	if len(after) != len(before)+1 {
		t.Fatalf("queue length = %d, want %d", len(after), len(before)+1)
	}
	if !reflect.DeepEqual(after[:len(before)], before) {
		t.Fatal("prior queue order not preserved")
	}
	if after[len(after)-1].ID != "c" {
		t.Fatalf("appended track is %q, want c", after[len(after)-1].ID)
	}
}

func TestSkipNextAtTailIsNoOp(t *testing.T) {
	p, _ := newTestPlayer()
	p.SetQueue([]Track{track("a"), track("b")})
	p.PlayTrack(track("b")) // index 1, the tail

	before := p.Snapshot()
	p.SkipNext()
	after := p.Snapshot()

	if after.CurrentIndex != before.CurrentIndex {
		t.Fatalf("index changed at tail: %d -> %d", before.CurrentIndex, after.CurrentIndex)
	}
	if after.CurrentTrack.ID != before.CurrentTrack.ID {
		t.Fatal("current track changed at tail")
	}
	if after.IsPlaying != before.IsPlaying {
		t.Fatal("playing flag changed at tail")
	}
}

func TestSkipPreviousAtHeadIsNoOp(t *testing.T) {
	p, _ := newTestPlayer()
	p.PlayTrack(track("a"))

	p.SkipPrevious()
	snap := p.Snapshot()
	if snap.CurrentIndex != 0 || snap.CurrentTrack.ID != "a" {
		t.Fatalf("SkipPrevious at head changed state: index=%d track=%v", snap.CurrentIndex, snap.CurrentTrack)
	}
}

func TestSkipNextAdvancesAndLoads(t *testing.T) {
	p, el := newTestPlayer()
	p.SetQueue([]Track{track("a"), track("b")})
	p.PlayTrack(track("a"))

	p.SkipNext()
	snap := p.Snapshot()
	if snap.CurrentIndex != 1 {
		t.Fatalf("expected index 1, got %d", snap.CurrentIndex)
	}
	if snap.CurrentTrack.ID != "b" {
		t.Fatalf("expected track b, got %s", snap.CurrentTrack.ID)
	}
	if el.source != "https://cdn.example/b.mp3" {
		t.Fatalf("element source = %q, want track b url", el.source)
	}
}

// SetQueue resets the index to 0 even when the playing track sits elsewhere
// in the new list. Pinned on purpose.
func TestSetQueueResetsIndexUnconditionally(t *testing.T) {
	p, _ := newTestPlayer()
	p.SetQueue([]Track{track("a"), track("b"), track("c")})
	p.PlayTrack(track("c")) // index 2

	p.SetQueue([]Track{track("a"), track("b"), track("c")})
	snap := p.Snapshot()
	if snap.CurrentIndex != 0 {
		t.Fatalf("expected index reset to 0, got %d", snap.CurrentIndex)
	}
	if snap.CurrentTrack == nil || snap.CurrentTrack.ID != "c" {
		t.Fatal("SetQueue should not change the current track")
	}
}

func TestSetQueueEmpty(t *testing.T) {
	p, _ := newTestPlayer()
	p.SetQueue([]Track{track("a")})
	p.SetQueue(nil)

	snap := p.Snapshot()
	if len(snap.Queue) != 0 {
		t.Fatalf("queue should be empty, got %d entries", len(snap.Queue))
	}
	if snap.CurrentIndex != -1 {
		t.Fatalf("empty queue should carry index -1, got %d", snap.CurrentIndex)
	}
}

// Seek and SetVolume forward values as-is; nothing clamps. Pinned on purpose.
func TestSeekAndSetVolumeDoNotClamp(t *testing.T) {
	p, el := newTestPlayer()
	p.PlayTrack(track("t1"))

	p.Seek(-5)
	if got := p.Snapshot().CurrentTime; got != -5 {
		t.Fatalf("seek(-5): currentTime = %v", got)
	}
	if el.currentTime != -5 {
		t.Fatalf("element received %v, want -5", el.currentTime)
	}

	p.SetVolume(1.7)
	if got := p.Snapshot().Volume; got != 1.7 {
		t.Fatalf("setVolume(1.7): volume = %v", got)
	}
}

func TestSeekThenEndedScenario(t *testing.T) {
	p, _ := newTestPlayer()
	p.PlayTrack(track("t1"))
	p.HandleLoadedMetadata(180)

	p.Seek(90)
	if got := p.Snapshot().CurrentTime; got != 90 {
		t.Fatalf("after seek(90): currentTime = %v", got)
	}

	p.HandleEnded()
	snap := p.Snapshot()
	if snap.IsPlaying {
		t.Fatal("ended should pause")
	}
	if snap.CurrentTime != 0 {
		t.Fatalf("ended should rewind, got %v", snap.CurrentTime)
	}
	if snap.CurrentTrack == nil || snap.CurrentTrack.ID != "t1" {
		t.Fatal("ended should keep the current track")
	}
	// No auto-advance: the queue index stays put.
	if snap.CurrentIndex != 0 {
		t.Fatalf("ended should not advance the queue, index = %d", snap.CurrentIndex)
	}
}

func TestSubscribePublishesTransitions(t *testing.T) {
	p, _ := newTestPlayer()

	var snaps []Snapshot
	unsubscribe := p.Subscribe(func(s Snapshot) {
		snaps = append(snaps, s)
	})

	p.PlayTrack(track("t1"))
	p.TogglePlayPause()

	// Initial snapshot + two transitions.
	if len(snaps) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(snaps))
	}
	if snaps[0].State() != StateIdle {
		t.Fatal("first notification should carry the initial idle state")
	}
	if snaps[1].State() != StatePlaying || snaps[2].State() != StatePaused {
		t.Fatalf("unexpected transition sequence: %v, %v", snaps[1].State(), snaps[2].State())
	}

	unsubscribe()
	p.TogglePlayPause()
	if len(snaps) != 3 {
		t.Fatal("unsubscribed subscriber still notified")
	}
}

func TestDefaultVolume(t *testing.T) {
	p, el := newTestPlayer()
	if got := p.Snapshot().Volume; got != 0.7 {
		t.Fatalf("default volume = %v, want 0.7", got)
	}
	if el.volume != 0.7 {
		t.Fatalf("element volume = %v, want 0.7", el.volume)
	}
}
