package planner

import "sort"

// sortTopics orders a course's active topics so every prerequisite
// precedes its dependents (Kahn's algorithm). Prerequisite ids not
// present among the topics are treated as already satisfied. Topics
// trapped in a cycle cannot be ordered; they are appended at the end
// sorted by order index and returned in cyclic, so the scheduler can
// exempt them from prerequisite gating instead of blocking forever.
func sortTopics(topics []Topic) (ordered []Topic, cyclic map[string]bool) {
	if len(topics) == 0 {
		return nil, nil
	}

	index := make(map[string]int, len(topics))
	for i, t := range topics {
		index[t.ID] = i
	}

	inDegree := make([]int, len(topics))
	dependents := make([][]int, len(topics))
	for i, t := range topics {
		seen := make(map[string]bool, len(t.Prerequisites))
		for _, p := range t.Prerequisites {
			if p == t.ID || seen[p] {
				continue // self or duplicate edge
			}
			seen[p] = true
			j, ok := index[p]
			if !ok {
				continue // done or deleted prerequisite, already satisfied
			}
			inDegree[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	// Ready queue kept in ascending order-index order.
	var queue []int
	for i, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, i)
		}
	}
	sort.Slice(queue, func(a, b int) bool {
		return topics[queue[a]].OrderIndex < topics[queue[b]].OrderIndex
	})

	ordered = make([]Topic, 0, len(topics))
	emitted := make([]bool, len(topics))
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		ordered = append(ordered, topics[i])
		emitted[i] = true

		for _, d := range dependents[i] {
			inDegree[d]--
			if inDegree[d] == 0 {
				queue = insertByOrder(queue, d, topics)
			}
		}
	}

	if len(ordered) < len(topics) {
		// Remainder contains a cycle. Append it rather than fail.
		var rest []int
		for i := range topics {
			if !emitted[i] {
				rest = append(rest, i)
			}
		}
		sort.Slice(rest, func(a, b int) bool {
			return topics[rest[a]].OrderIndex < topics[rest[b]].OrderIndex
		})
		cyclic = make(map[string]bool, len(rest))
		for _, i := range rest {
			ordered = append(ordered, topics[i])
			cyclic[topics[i].ID] = true
		}
	}

	return ordered, cyclic
}

// insertByOrder inserts topic index i into the queue at the position
// preserving ascending order-index order.
func insertByOrder(queue []int, i int, topics []Topic) []int {
	pos := sort.Search(len(queue), func(k int) bool {
		return topics[queue[k]].OrderIndex > topics[i].OrderIndex
	})
	queue = append(queue, 0)
	copy(queue[pos+1:], queue[pos:])
	queue[pos] = i
	return queue
}
