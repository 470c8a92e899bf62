// queue.go - FIFO intrusive queues over *PCB, grounded on pcb.c's
// add_pcb_to_queue/remove_pcb_from_queue and add_proc_to_msgqueue/
// remove_proc_from_msgqueue. A PCB carries a single prev/next pair
// (listNode, in pcb.go) used by whichever one of the lists below
// currently holds it; this keeps "a PCB is on at most one queue" a
// structural property instead of an assertion.

package kernel

// fifo is a doubly-linked, tail-insert/head-remove queue of *PCB, addressed
// through pointers to its backing head/tail fields (which usually live
// embedded in some other struct, e.g. the owner PCB for a blocking queue).
// It owns no node storage beyond that; nodes live inside the PCBs
// themselves via listNode.
type fifo struct {
	head, tail **PCB
}

func (q fifo) empty() bool { return *q.head == nil }

func (q fifo) pushBack(p *PCB) {
	p.prev, p.next = *q.tail, nil
	if *q.tail != nil {
		(*q.tail).next = p
	} else {
		*q.head = p
	}
	*q.tail = p
}

func (q fifo) popFront() *PCB {
	p := *q.head
	if p == nil {
		return nil
	}
	q.remove(p)
	return p
}

// remove detaches p from this queue. p must currently be linked in q;
// callers are responsible for that invariant (queue corruption is an
// assertion failure, not a recoverable error, per spec.md §4.2).
func (q fifo) remove(p *PCB) {
	if p.prev != nil {
		p.prev.next = p.next
	} else if *q.head == p {
		*q.head = p.next
	}
	if p.next != nil {
		p.next.prev = p.prev
	} else if *q.tail == p {
		*q.tail = p.prev
	}
	p.prev, p.next = nil, nil
}

// blockingQueueOf returns the fifo header for peers parked on owner
// because of kind, or the zero fifo for kinds that have no owner-side
// queue (BlockNone, BlockRecvAny, BlockSleep).
func blockingQueueOf(owner *PCB, kind BlockKind) fifo {
	switch kind {
	case BlockSender:
		return fifo{&owner.senderHead, &owner.senderTail}
	case BlockReceiver:
		return fifo{&owner.receiverHead, &owner.receiverTail}
	case BlockWaiting:
		return fifo{&owner.waiterHead, &owner.waiterTail}
	default:
		return fifo{}
	}
}

// addProcToBlockingQueue parks peer on owner's queue of the given kind,
// recording the (owner, kind) pair on peer so it can be found and
// cross-removed in O(1) later (§4.2).
func addProcToBlockingQueue(peer, owner *PCB, kind BlockKind) {
	blockingQueueOf(owner, kind).pushBack(peer)
	peer.blockingOwner = owner
	peer.blockingKind = kind
	peer.State = StateBlocked
}

// removeProcFromBlockingQueue detaches peer from whichever owner queue it
// last recorded itself on, and clears that bookkeeping. It is a no-op if
// peer is not currently parked on a blocking queue.
func removeProcFromBlockingQueue(peer *PCB) {
	owner, kind := peer.blockingOwner, peer.blockingKind
	if owner == nil || kind == BlockNone {
		return
	}
	if q := blockingQueueOf(owner, kind); q.head != nil {
		q.remove(peer)
	}
	peer.blockingOwner = nil
	peer.blockingKind = BlockNone
}
