package linux

import (
	"sort"

	"github.com/openforensics/linmem/memory"
)

// Task is the summary a process-listing pass extracts per task_struct.
type Task struct {
	PID  int
	PPID int
	Name string
	Addr memory.VirtualAddress
}

// FindRoot follows parent links from pid until it leaves the task map or
// revisits a PID. Corrupted inheritance links can form cycles, so the
// visited set is the termination guarantee; the result is the best
// available root, not a verified one.
func FindRoot(tasks map[int]Task, pid int) int {
	seen := make(map[int]bool)
	for {
		t, ok := tasks[pid]
		if !ok || seen[pid] {
			return pid
		}
		seen[pid] = true
		pid = t.PPID
	}
}

// TreeEntry is one task in a flattened forest, pre-order, with its depth
// below its forest root.
type TreeEntry struct {
	Task  Task
	Depth int
}

// Tree arranges tasks into parent/child forests. It drains an owned copy
// of the map with an explicit work list, so every task is emitted exactly
// once even when parent links cycle, and ordering is deterministic
// (ascending PID among siblings and among forest roots).
func Tree(tasks map[int]Task) []TreeEntry {
	remaining := make(map[int]Task, len(tasks))
	children := make(map[int][]int)
	for pid, t := range tasks {
		remaining[pid] = t
		children[t.PPID] = append(children[t.PPID], pid)
	}
	for _, kids := range children {
		sort.Ints(kids)
	}

	var out []TreeEntry
	for len(remaining) > 0 {
		start := -1
		for pid := range remaining {
			if start < 0 || pid < start {
				start = pid
			}
		}
		root := FindRoot(remaining, start)

		type frame struct {
			pid   int
			depth int
		}
		// Depth -1 marks the synthetic root frame: it only expands, the
		// root pid itself may not exist as a task (PPID 0 of init).
		stack := []frame{{pid: root, depth: -1}}
		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if f.depth >= 0 {
				out = append(out, TreeEntry{Task: tasks[f.pid], Depth: f.depth})
			}
			kids := children[f.pid]
			for i := len(kids) - 1; i >= 0; i-- {
				pid := kids[i]
				if _, ok := remaining[pid]; !ok {
					continue
				}
				delete(remaining, pid)
				stack = append(stack, frame{pid: pid, depth: f.depth + 1})
			}
		}
		// A start whose whole subtree was already claimed would stall the
		// outer loop; claim it directly.
		if _, ok := remaining[start]; ok {
			delete(remaining, start)
			out = append(out, TreeEntry{Task: tasks[start], Depth: 0})
		}
	}
	return out
}
