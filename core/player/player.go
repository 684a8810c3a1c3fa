// Package player is the single source of truth for "what is playing". It
// owns one media element, the current track, a play queue and the transport
// controls, and publishes every state transition to its subscribers. Views
// subscribe and redraw on notification instead of polling.
package player

import (
	"sync"

	"riseup/logger"
)

// Track is the slice of catalog data the player needs. IDs are the string
// form used by the API layer.
type Track struct {
	ID         string
	Title      string
	ArtistName string
	Album      string
	AudioURL   string
	CoverURL   string
	Duration   float64 // Seconds, advisory; the element reports the real one
}

// State of the player.
type State int

const (
	// StateIdle means no current track.
	StateIdle State = iota
	// StatePaused means a track is loaded but not playing.
	StatePaused
	// StatePlaying means a track is loaded and playing.
	StatePlaying
)

// Element is the audio-rendering primitive the player drives. The browser
// media element is the reference collaborator: src, play, pause, currentTime
// and volume. The element reports back through the Handle* methods on Player.
type Element interface {
	SetSource(url string)
	Load()
	// Play starts or resumes playback. An error models an autoplay-policy
	// rejection; the player degrades to paused without surfacing it.
	Play() error
	Pause()
	SetCurrentTime(seconds float64)
	SetVolume(volume float64)
	// Release detaches the current source.
	Release()
}

// Snapshot is an immutable view of the player state handed to subscribers.
type Snapshot struct {
	CurrentTrack *Track
	IsPlaying    bool
	CurrentTime  float64
	Duration     float64
	Volume       float64
	Queue        []Track
	CurrentIndex int
}

// State derives the three-state view from the snapshot.
func (s Snapshot) State() State {
	switch {
	case s.CurrentTrack == nil:
		return StateIdle
	case s.IsPlaying:
		return StatePlaying
	default:
		return StatePaused
	}
}

// Subscriber receives a snapshot after every state transition.
type Subscriber func(Snapshot)

const defaultVolume = 0.7

// Player is the shared playback state container. Safe for use from multiple
// goroutines; effects on the element run under the lock, so each transition
// fully owns the element before the next one starts.
type Player struct {
	mu sync.Mutex

	element Element

	current      *Track
	isPlaying    bool
	currentTime  float64
	duration     float64
	volume       float64
	queue        []Track
	currentIndex int // -1 iff the queue is empty, else always in bounds

	subscribers map[int]Subscriber
	nextSubID   int
}

// New creates a player driving the given element.
func New(element Element) *Player {
	p := &Player{
		element:      element,
		volume:       defaultVolume,
		currentIndex: -1,
		subscribers:  make(map[int]Subscriber),
	}
	element.SetVolume(defaultVolume)
	return p
}

// Subscribe registers a subscriber and returns its unsubscribe function. The
// subscriber is immediately called with the current state.
func (p *Player) Subscribe(fn Subscriber) (unsubscribe func()) {
	p.mu.Lock()
	id := p.nextSubID
	p.nextSubID++
	p.subscribers[id] = fn
	snap := p.snapshotLocked()
	p.mu.Unlock()

	fn(snap)

	return func() {
		p.mu.Lock()
		delete(p.subscribers, id)
		p.mu.Unlock()
	}
}

// Snapshot returns the current state.
func (p *Player) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// PlayTrack makes track current and starts playback. If the track is already
// queued its position is adopted; otherwise it is appended. The element
// source is replaced and load reinitiated.
func (p *Player) PlayTrack(track Track) {
	p.mu.Lock()

	idx := p.indexOfLocked(track.ID)
	if idx < 0 {
		p.queue = append(p.queue, track)
		idx = len(p.queue) - 1
	}
	p.currentIndex = idx
	p.loadAndPlayLocked(p.queue[idx])

	p.publishLocked()
}

// TogglePlayPause flips the playing flag. Resuming may be rejected by the
// element (autoplay policy); the player then stays paused and the caller is
// not told.
func (p *Player) TogglePlayPause() {
	p.mu.Lock()

	if p.isPlaying {
		p.element.Pause()
		p.isPlaying = false
	} else {
		if err := p.element.Play(); err != nil {
			logger.Debug("Playback resume rejected", logger.ErrorField(err))
			p.isPlaying = false
		} else {
			p.isPlaying = true
		}
	}

	p.publishLocked()
}

// Seek moves the playhead. The time is forwarded to the element as-is; no
// bounds clamping is applied.
func (p *Player) Seek(seconds float64) {
	p.mu.Lock()
	p.element.SetCurrentTime(seconds)
	p.currentTime = seconds
	p.publishLocked()
}

// SetVolume updates the gain. No clamping is applied.
func (p *Player) SetVolume(volume float64) {
	p.mu.Lock()
	p.element.SetVolume(volume)
	p.volume = volume
	p.publishLocked()
}

// StopTrack clears the current track and releases the media source. The
// queue is left intact.
func (p *Player) StopTrack() {
	p.mu.Lock()

	p.current = nil
	p.isPlaying = false
	p.currentTime = 0
	p.element.Pause()
	p.element.Release()

	p.publishLocked()
}

// SkipNext advances to the next queued track. Silently a no-op at the tail.
func (p *Player) SkipNext() {
	p.mu.Lock()

	if p.currentIndex < 0 || p.currentIndex+1 >= len(p.queue) {
		p.mu.Unlock()
		return
	}
	p.currentIndex++
	p.loadAndPlayLocked(p.queue[p.currentIndex])

	p.publishLocked()
}

// SkipPrevious moves to the previous queued track. Silently a no-op at the head.
func (p *Player) SkipPrevious() {
	p.mu.Lock()

	if p.currentIndex <= 0 {
		p.mu.Unlock()
		return
	}
	p.currentIndex--
	p.loadAndPlayLocked(p.queue[p.currentIndex])

	p.publishLocked()
}

// AddToQueue appends a track to the queue without touching playback.
func (p *Player) AddToQueue(track Track) {
	p.mu.Lock()

	p.queue = append(p.queue, track)
	if p.currentIndex < 0 {
		p.currentIndex = 0
	}

	p.publishLocked()
}

// SetQueue replaces the queue. The current index resets to 0 even when the
// playing track sits elsewhere in the new list.
func (p *Player) SetQueue(tracks []Track) {
	p.mu.Lock()

	p.queue = make([]Track, len(tracks))
	copy(p.queue, tracks)
	if len(p.queue) == 0 {
		p.currentIndex = -1
	} else {
		p.currentIndex = 0
	}

	p.publishLocked()
}

// HandleLoadedMetadata is called by the element once track metadata is known.
func (p *Player) HandleLoadedMetadata(duration float64) {
	p.mu.Lock()
	p.duration = duration
	p.publishLocked()
}

// HandleTimeUpdate is called by the element as the playhead moves.
func (p *Player) HandleTimeUpdate(seconds float64) {
	p.mu.Lock()
	p.currentTime = seconds
	p.publishLocked()
}

// HandleEnded is called by the element when the track finishes. The player
// pauses and rewinds but keeps the current track; it does not advance the
// queue.
func (p *Player) HandleEnded() {
	p.mu.Lock()
	p.isPlaying = false
	p.currentTime = 0
	p.publishLocked()
}

func (p *Player) indexOfLocked(id string) int {
	for i, t := range p.queue {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// loadAndPlayLocked replaces the element source with the given track and
// attempts playback. A play rejection degrades to paused.
func (p *Player) loadAndPlayLocked(track Track) {
	current := track
	p.current = &current
	p.currentTime = 0
	p.element.SetSource(track.AudioURL)
	p.element.Load()
	if err := p.element.Play(); err != nil {
		logger.Debug("Playback start rejected", logger.ErrorField(err), logger.String("trackId", track.ID))
		p.isPlaying = false
	} else {
		p.isPlaying = true
	}
}

func (p *Player) snapshotLocked() Snapshot {
	snap := Snapshot{
		IsPlaying:    p.isPlaying,
		CurrentTime:  p.currentTime,
		Duration:     p.duration,
		Volume:       p.volume,
		Queue:        make([]Track, len(p.queue)),
		CurrentIndex: p.currentIndex,
	}
	copy(snap.Queue, p.queue)
	if p.current != nil {
		current := *p.current
		snap.CurrentTrack = &current
	}
	return snap
}

// publishLocked snapshots the state, drops the lock and notifies subscribers.
// Callers must hold the lock and must not touch state afterwards.
func (p *Player) publishLocked() {
	snap := p.snapshotLocked()
	subs := make([]Subscriber, 0, len(p.subscribers))
	for _, fn := range p.subscribers {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}
