// Package pack computes the initial circle packing of a normalized tree.
//
// Leaves get a radius proportional to the square root of their weight.
// Each sibling group is packed with the front-chain algorithm: circles are
// placed tangent to two circles on the current front, and the front is
// repaired whenever a newly placed circle intersects it. The group is then
// wrapped in its smallest enclosing circle (Welzl-style with a randomized,
// seeded insertion order).
//
// [Pack] runs two passes. The first packs without padding to learn the
// root radius; the second packs again with padding scaled into that
// unpadded space, and a final translation scales everything so the root
// circle fills the smaller side of the canvas.
//
// Packing is deterministic: the shuffle used by the enclosing-circle
// search is driven by a fixed-seed linear congruential generator.
package pack
