package id

import (
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Init initializes the Snowflake node. The server and the worker must use
// different node ids.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// New generates a new time-ordered int64 ID. Falls back to node 0 when Init
// was never called (tests, CLI tools).
func New() int64 {
	if err := Init(0); err != nil {
		panic(err)
	}
	return node.Generate().Int64()
}

// NewString returns a new ID rendered in base 10, the form used for session
// and thread handles that travel through headers and cookies.
func NewString() string {
	return strconv.FormatInt(New(), 10)
}
