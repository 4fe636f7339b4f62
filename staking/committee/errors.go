package committee

import "errors"

// ErrNilNodeID signals that an empty node ID was provided in a shard assignment
var ErrNilNodeID = errors.New("nil node ID in shard assignment")

// ErrDuplicateNodeID signals that a node appears more than once in a shard assignment
var ErrDuplicateNodeID = errors.New("duplicate node ID in shard assignment")

// ErrTooManyShards signals that a shard assignment exceeds the representable number of shards
var ErrTooManyShards = errors.New("too many shards in assignment")

// ErrInvalidShardAssignment signals that a new shard assignment does not preserve the total shard count
var ErrInvalidShardAssignment = errors.New("shard assignment does not preserve the total number of shards")
