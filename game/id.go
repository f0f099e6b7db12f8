package game

// ID 实体唯一标识，单进程内严格递增且不复用
type ID uint64

// IDGen 由世界模型持有的计数器；随快照一起序列化，恢复后从正确的下一个 id 继续
type IDGen struct {
	Next ID `json:"next"`
}

func (g *IDGen) Gen() ID {
	id := g.Next
	g.Next++
	return id
}
