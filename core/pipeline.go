package core

import "escctl/protocol"

// CommandPipeline turns queued bytes into line commands. It runs in the main
// loop and only starts on a line once the line is complete, so a malformed
// or unknown line is discarded without waiting for more input.
type CommandPipeline struct {
	queue    *ByteQueue
	registry *CommandRegistry
	log      *EventLog
	now      func() uint32

	lines   uint32
	ignored uint32
}

// NewCommandPipeline creates a pipeline reading from queue
func NewCommandPipeline(queue *ByteQueue, registry *CommandRegistry, log *EventLog, now func() uint32) *CommandPipeline {
	if now == nil {
		now = func() uint32 { return 0 }
	}
	return &CommandPipeline{
		queue:    queue,
		registry: registry,
		log:      log,
		now:      now,
	}
}

// Poll processes at most one complete line. Returns false if no line was
// queued.
func (p *CommandPipeline) Poll() bool {
	if p.queue.LinesAvailable() == 0 {
		return false
	}
	p.lines++

	marker := p.queue.Pop()
	// Line feeds left over from CR LF senders belong to no line
	for marker == protocol.LineFeed {
		marker = p.queue.Pop()
	}
	if marker == protocol.Terminator {
		return true
	}

	if cmd, ok := p.registry.Lookup(marker); ok {
		cmd.Handler(p.queue)
	} else {
		p.ignored++
		if p.log != nil {
			p.log.Record(EvtUnknownCommand, p.now(), uint32(marker))
		}
	}

	p.discardLine()
	return true
}

// discardLine drops everything up to and including the next terminator
func (p *CommandPipeline) discardLine() {
	for p.queue.Pop() != protocol.Terminator {
	}
}

// Lines returns the number of lines consumed
func (p *CommandPipeline) Lines() uint32 {
	return p.lines
}

// Ignored returns the number of lines with an unknown marker
func (p *CommandPipeline) Ignored() uint32 {
	return p.ignored
}
