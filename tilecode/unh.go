package tilecode

// unhPrimes is a fixed table of large primes used to combine the
// components of a grid-coordinate tuple into a single hash value. The
// table is the classic University of New Hampshire (UNH) tile-coding
// hash's mixing constants: one odd, widely-spaced prime per tuple
// position, XORed against a multiplicative avalanche step.
var unhPrimes = [...]uint64{
	2654435761, 2246822519, 3266489917, 668265263,
	374761393, 2870177467, 3480296411, 4096336457,
	955463281, 1597334699, 3812015819, 2348050307,
	1416360541, 3253451611, 3012222701, 1519489369,
}

// unhHash combines tuple into a single deterministic hash in [0, m),
// following the classic UNH scheme: multiply each component by a
// position-specific prime and XOR the product into the running hash,
// then run a multiplicative mix-and-shift
// avalanche step (the same shape as Murmur/FNV finalizers) before
// folding in the next component.
func unhHash(tuple []int, m int) int {
	var h uint64
	for i, v := range tuple {
		p := unhPrimes[i%len(unhPrimes)]
		h ^= uint64(uint32(v)) * p
		h *= 2654435761
		h ^= h >> 33
	}
	return int(h % uint64(m))
}
