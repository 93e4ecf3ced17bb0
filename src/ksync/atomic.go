package ksync

import "sync/atomic"

func atomicAdd(addr *uint64, delta uint64) uint64 {
	return atomic.AddUint64(addr, delta)
}

func atomicLoad(addr *uint64) uint64 {
	return atomic.LoadUint64(addr)
}

func atomicCAS(addr *uint64, old, new uint64) bool {
	return atomic.CompareAndSwapUint64(addr, old, new)
}
