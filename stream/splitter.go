package stream

import "bytes"

const EOL = '\n'

// Splitter reassembles lines from successive chunks of one input.
//
// A line found entirely inside a chunk is emitted straight from that chunk.
// Only a line that straddles chunks is copied, into linebuf, and emitted once
// its terminator arrives or the input ends. Emitted lines include their
// terminator and are only valid until the next Feed or Flush.
type Splitter struct {
	linebuf []byte
	emit    func(line []byte)
}

func NewSplitter(emit func(line []byte)) *Splitter {
	return &Splitter{emit: emit}
}

func (s *Splitter) Feed(chunk []byte) {
	start := 0
	for {
		i := bytes.IndexByte(chunk[start:], EOL)
		if i < 0 {
			break
		}
		end := start + i + 1
		if len(s.linebuf) == 0 {
			s.emit(chunk[start:end])
		} else {
			s.linebuf = append(s.linebuf, chunk[start:end]...)
			s.emit(s.linebuf)
			s.linebuf = s.linebuf[:0]
		}
		start = end
	}

	// Keep the unterminated tail for the next chunk.
	if start < len(chunk) {
		s.linebuf = append(s.linebuf, chunk[start:]...)
	}
}

// Flush emits the pending unterminated line, if any, at the end of the input.
func (s *Splitter) Flush() {
	if len(s.linebuf) == 0 {
		return
	}
	s.emit(s.linebuf)
	s.linebuf = s.linebuf[:0]
}

// Pending returns the number of bytes waiting for a terminator.
func (s *Splitter) Pending() int {
	return len(s.linebuf)
}
