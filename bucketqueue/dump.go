package bucketqueue

import (
	"github.com/xlab/treeprint"

	"github.com/jiverson002/sbma-sub001/utils"
)

// Dump renders the active chain as a tree: one branch per occupied level,
// one leaf per element in bucket order (most recent first).
func (q *Queue) Dump() string {
	root := treeprint.NewWithRoot("levels=" + utils.Itoa(len(q.buckets)) + " size=" + utils.Itoa(q.size))
	for k := q.head; k != none; k = q.buckets[k].next {
		meta := "level"
		if int(k) == len(q.buckets)-1 {
			meta = "sentinel"
		}
		br := root.AddMetaBranch(meta, int(k))
		for h := q.buckets[k].head; h != NilHandle; h = q.node(h).next {
			b, s := q.arena.locate(h)
			br.AddMetaNode(utils.Utoa(uint64(b))+"/"+utils.Utoa(uint64(s)), utils.Utoa(q.node(h).tag))
		}
	}
	return root.String()
}
