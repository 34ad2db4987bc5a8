// Package lock drives the screen lock: it tracks typed input against the
// passphrase, runs the render loop over the active theme, and owns the
// lifecycle from locked to unlocked or timed out.
package lock

import (
	"bytes"
	"strings"

	"github.com/awnumar/memguard"
	"golang.org/x/crypto/bcrypt"
)

const (
	// maxBufferLen is the hard cap on accumulated keystrokes.
	maxBufferLen = 1000
	// keepOnTrim is how much of the tail survives a truncation.
	keepOnTrim = 500

	printableMin = 32
	printableMax = 126
)

// SecureBuffer accumulates typed characters in locked memory. Capacity is
// fixed at maxBufferLen; when an append would overflow, the buffer keeps
// only its tail so that afterward exactly keepOnTrim characters remain.
type SecureBuffer struct {
	mem *memguard.LockedBuffer
	n   int
}

func NewSecureBuffer() *SecureBuffer {
	return &SecureBuffer{mem: memguard.NewBuffer(maxBufferLen)}
}

// AppendRune appends one printable character. Non-printables are dropped.
func (sb *SecureBuffer) AppendRune(r rune) {
	if r < printableMin || r > printableMax {
		return
	}
	data := sb.mem.Bytes()
	if sb.n+1 > maxBufferLen {
		copy(data, data[sb.n-(keepOnTrim-1):sb.n])
		memguard.WipeBytes(data[keepOnTrim-1:])
		sb.n = keepOnTrim - 1
	}
	data[sb.n] = byte(r)
	sb.n++
}

// Backspace removes the last character. Returns false on an empty buffer.
func (sb *SecureBuffer) Backspace() bool {
	if sb.n == 0 {
		return false
	}
	sb.n--
	memguard.WipeBytes(sb.mem.Bytes()[sb.n : sb.n+1])
	return true
}

func (sb *SecureBuffer) Len() int { return sb.n }

// Bytes returns a view of the buffered characters. The view aliases locked
// memory and is invalidated by the next mutation or Destroy.
func (sb *SecureBuffer) Bytes() []byte {
	return sb.mem.Bytes()[:sb.n]
}

// Destroy wipes and releases the locked memory. Safe to call twice.
func (sb *SecureBuffer) Destroy() {
	sb.mem.Destroy()
	sb.n = 0
}

// MatchWords reports whether every word appears, case-insensitively, as a
// substring of buf. Order and overlap are irrelevant. An empty word set
// never matches.
func MatchWords(buf []byte, words []string) bool {
	if len(words) == 0 {
		return false
	}
	lower := bytes.ToLower(buf)
	defer memguard.WipeBytes(lower)
	for _, w := range words {
		if !bytes.Contains(lower, []byte(strings.ToLower(w))) {
			return false
		}
	}
	return true
}

// Tracker consumes keystrokes and decides when the passphrase has been
// satisfied. Word mode checks the whole rolling buffer after every
// mutation; hash mode checks the segment typed since the last Enter
// against a bcrypt hash.
type Tracker struct {
	buf   *SecureBuffer
	words []string
	hash  []byte
	line  []byte
}

func NewTracker(words []string, hash []byte) *Tracker {
	return &Tracker{buf: NewSecureBuffer(), words: words, hash: hash}
}

// Key feeds one typed rune and reports whether the passphrase now matches.
func (t *Tracker) Key(r rune) bool {
	if r < printableMin || r > printableMax {
		return false
	}
	t.buf.AppendRune(r)
	if t.hash != nil {
		t.line = append(t.line, byte(r))
	}
	return t.matched()
}

// Backspace removes the last typed character.
func (t *Tracker) Backspace() bool {
	t.buf.Backspace()
	if t.hash != nil && len(t.line) > 0 {
		memguard.WipeBytes(t.line[len(t.line)-1:])
		t.line = t.line[:len(t.line)-1]
	}
	return t.matched()
}

// Enter closes the current line. In hash mode the closed line is compared
// against the configured bcrypt hash.
func (t *Tracker) Enter() bool {
	if t.hash == nil {
		return t.matched()
	}
	ok := bcrypt.CompareHashAndPassword(t.hash, t.line) == nil
	memguard.WipeBytes(t.line)
	t.line = t.line[:0]
	return ok || t.matched()
}

func (t *Tracker) matched() bool {
	return MatchWords(t.buf.Bytes(), t.words)
}

// Len reports how many characters are currently buffered.
func (t *Tracker) Len() int { return t.buf.Len() }

// Destroy wipes all accumulated input.
func (t *Tracker) Destroy() {
	t.buf.Destroy()
	memguard.WipeBytes(t.line)
	t.line = nil
}
