package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gopxl/beep"
	"go.uber.org/zap"
)

// ErrNoBackend is returned by DetectBackend when no system player is installed
var ErrNoBackend = errors.New("no compatible audio backend found")

// Backend is a command-line player reading raw s16le stereo PCM from stdin
type Backend struct {
	Name string
	Path string
	Args []string
}

// DetectBackend searches for a system player
// Priority: pacat > pw-cat > aplay > play (sox)
func DetectBackend(rate int) (*Backend, error) {
	r := strconv.Itoa(rate)
	candidates := []Backend{
		{Name: "pacat", Args: []string{"--raw", "--format=s16le", "--rate=" + r, "--channels=2", "--latency-msec=50", "--playback"}},
		{Name: "pw-cat", Args: []string{"--playback", "--format=s16", "--rate=" + r, "--channels=2", "--latency=50ms", "-"}},
		{Name: "aplay", Args: []string{"-t", "raw", "-f", "S16_LE", "-r", r, "-c", "2", "-q"}},
		{Name: "play", Args: []string{"-t", "raw", "-e", "signed", "-b", "16", "-c", "2", "-r", r, "-", "-d", "-q"}},
	}
	for _, c := range candidates {
		if path, err := exec.LookPath(c.Name); err == nil {
			c.Path = path
			return &c, nil
		}
	}
	return nil, ErrNoBackend
}

// Config configures a Player
type Config struct {
	Enabled    bool
	SampleRate int
	Volume     float64
}

// Player renders cues and writes them to a backend process
// A missing or failing backend switches the player to silent mode; nothing is surfaced to callers
type Player struct {
	cfg    Config
	logger *zap.Logger

	cmd   *exec.Cmd
	out   io.WriteCloser
	queue chan Cue

	running atomic.Bool
	silent  atomic.Bool
	played  atomic.Uint64
	dropped atomic.Uint64

	stopOnce sync.Once
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewPlayer creates a stopped player
func NewPlayer(cfg Config, logger *zap.Logger) *Player {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 44100
	}
	if cfg.Volume == 0 {
		cfg.Volume = 0.6
	}
	return &Player{
		cfg:      cfg,
		logger:   logger,
		queue:    make(chan Cue, 16),
		stopChan: make(chan struct{}),
	}
}

// Start launches the backend, falling back to silent mode when none is usable
func (p *Player) Start() error {
	if !p.running.CompareAndSwap(false, true) {
		return fmt.Errorf("audio player already running")
	}
	if !p.cfg.Enabled {
		p.silent.Store(true)
		return nil
	}

	backend, err := DetectBackend(p.cfg.SampleRate)
	if err != nil {
		p.logger.Info("audio disabled", zap.Error(err))
		p.silent.Store(true)
		return nil
	}

	cmd := exec.Command(backend.Path, backend.Args...)
	stdin, err := cmd.StdinPipe()
	if err == nil {
		err = cmd.Start()
	}
	if err != nil {
		p.logger.Warn("audio backend failed", zap.String("backend", backend.Name), zap.Error(err))
		p.silent.Store(true)
		return nil
	}
	return p.attach(cmd, stdin)
}

// attach begins writing cues to out, cmd may be nil when out is not a process
func (p *Player) attach(cmd *exec.Cmd, out io.WriteCloser) error {
	p.cmd = cmd
	p.out = out
	p.wg.Add(1)
	go p.loop()
	return nil
}

func (p *Player) loop() {
	defer p.wg.Done()
	rate := beep.SampleRate(p.cfg.SampleRate)
	for {
		select {
		case <-p.stopChan:
			return
		case c := <-p.queue:
			if _, err := p.out.Write(Render(NewCue(c, rate, p.cfg.Volume))); err != nil {
				p.logger.Warn("audio pipe closed", zap.Error(err))
				p.silent.Store(true)
				return
			}
			p.played.Add(1)
		}
	}
}

// Play queues cue without blocking, returns false when silent or the queue is full
func (p *Player) Play(c Cue) bool {
	if !p.running.Load() || p.silent.Load() {
		return false
	}
	select {
	case p.queue <- c:
		return true
	default:
		p.dropped.Add(1)
		return false
	}
}

// Silent reports whether cues are being discarded
func (p *Player) Silent() bool { return p.silent.Load() }

// Stats returns played and dropped counts
func (p *Player) Stats() (played, dropped uint64) {
	return p.played.Load(), p.dropped.Load()
}

// Stop halts the writer and the backend, safe to call more than once
func (p *Player) Stop() error {
	p.stopOnce.Do(func() {
		close(p.stopChan)
		p.wg.Wait()
		if p.out != nil {
			p.out.Close()
		}
		if p.cmd != nil && p.cmd.Process != nil {
			p.cmd.Process.Kill()
			p.cmd.Wait()
		}
		p.running.Store(false)
	})
	return nil
}

// Render drains s into interleaved stereo int16 LE bytes with soft limiting
func Render(s beep.Streamer) []byte {
	buf := make([][2]float64, 512)
	var out []byte
	for {
		n, ok := s.Stream(buf)
		for _, frame := range buf[:n] {
			out = binary.LittleEndian.AppendUint16(out, uint16(toInt16(frame[0])))
			out = binary.LittleEndian.AppendUint16(out, uint16(toInt16(frame[1])))
		}
		if !ok || n == 0 {
			return out
		}
	}
}

func toInt16(v float64) int16 {
	// Soft knee above 0.8, then hard clip
	if v > 0.8 {
		v = 0.8 + 0.2*(1.0-1.0/(1.0+(v-0.8)*5.0))
	} else if v < -0.8 {
		v = -0.8 - 0.2*(1.0-1.0/(1.0+(-v-0.8)*5.0))
	}
	v = max(-1, min(1, v))
	return int16(v * 32767)
}
