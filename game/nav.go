package game

import (
	"container/heap"
	"math"
)

// Obstacle 建图时排除的静态圆形障碍
type Obstacle struct {
	Position Vec2
	Radius   float64
}

// NavGraph 寻路图：规则网格采样点 + 邻接表。构建后只读
type NavGraph struct {
	Nodes []Vec2  `json:"nodes"`
	Edges [][]int `json:"edges"`
}

// BuildNavGraph 在 bounds 内按 step 布点，剔除落在 (障碍半径+margin) 内的点，
// 距离不超过 step*link 的点互相连通
func BuildNavGraph(bounds Rect, step float64, obstacles []Obstacle, margin, link float64) NavGraph {
	if step <= 0 {
		return NavGraph{}
	}
	cols := int(math.Floor(bounds.Width()/step)) + 1
	rows := int(math.Floor(bounds.Height()/step)) + 1
	nodes := make([]Vec2, 0, cols*rows)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			p := Vec2{X: bounds.Min.X + float64(col)*step, Y: bounds.Min.Y + float64(row)*step}
			blocked := false
			for _, obs := range obstacles {
				if p.Dist(obs.Position) < obs.Radius+margin {
					blocked = true
					break
				}
			}
			if !blocked {
				nodes = append(nodes, p)
			}
		}
	}
	return NewNavGraph(nodes, step*link)
}

// NewNavGraph 按距离阈值连边（O(n²)，只在构建世界时执行一次）
func NewNavGraph(nodes []Vec2, linkDistance float64) NavGraph {
	edges := make([][]int, len(nodes))
	for i := range nodes {
		for j := i + 1; j < len(nodes); j++ {
			if nodes[i].Dist(nodes[j]) <= linkDistance {
				edges[i] = append(edges[i], j)
				edges[j] = append(edges[j], i)
			}
		}
	}
	return NavGraph{Nodes: nodes, Edges: edges}
}

// Nearest 线性扫描找最近节点；空图返回 false
func (g *NavGraph) Nearest(p Vec2) (int, bool) {
	best, bestDist := -1, math.Inf(1)
	for i, n := range g.Nodes {
		if d := n.Dist(p); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, best >= 0
}

type navItem struct {
	node  int
	dist  float64
	index int
}

type navQueue []*navItem

func (q navQueue) Len() int { return len(q) }

func (q navQueue) Less(i, j int) bool {
	if q[i].dist == q[j].dist {
		return q[i].node < q[j].node
	}
	return q[i].dist < q[j].dist
}

func (q navQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *navQueue) Push(x any) {
	item := x.(*navItem)
	item.index = len(*q)
	*q = append(*q, item)
}

func (q *navQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*q = old[:n-1]
	return item
}

// NextHop 以 to 为源做 Dijkstra，直到 from 被确定；返回 from 走向 to 的下一跳。
// from == to 时返回 to；不可达或下标非法返回 false
func (g *NavGraph) NextHop(from, to int) (int, bool) {
	n := len(g.Nodes)
	if from < 0 || to < 0 || from >= n || to >= n {
		return 0, false
	}
	if from == to {
		return to, true
	}
	dist := make([]float64, n)
	for i := range dist {
		dist[i] = math.Inf(1)
	}
	prev := make([]int, n)
	done := make([]bool, n)
	dist[to] = 0
	prev[to] = -1

	open := &navQueue{}
	heap.Push(open, &navItem{node: to})
	for open.Len() > 0 {
		cur := heap.Pop(open).(*navItem)
		if done[cur.node] {
			continue
		}
		done[cur.node] = true
		if cur.node == from {
			return prev[from], true
		}
		for _, next := range g.Edges[cur.node] {
			if done[next] {
				continue
			}
			alt := cur.dist + g.Nodes[cur.node].Dist(g.Nodes[next])
			if alt < dist[next] {
				dist[next] = alt
				prev[next] = cur.node
				heap.Push(open, &navItem{node: next, dist: alt})
			}
		}
	}
	return 0, false
}
