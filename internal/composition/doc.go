// Package composition turns a template and a pool of source images into
// composition jobs.
//
// A Job is pure data: for each filled slot it records which image goes there
// and which region of that image (in source pixel space) is shown. Jobs hold
// no pixels; the imaging package resolves image ids against a decoded image
// table when a job is rendered.
//
// # Smart Crop
//
// ComputeCrop chooses the largest region of an image that matches a slot's
// physical aspect ratio while keeping the image's focal point as close to the
// middle as the image edges allow.
//
// # Variations
//
// Generator produces a batch of independent jobs. Within one job an image is
// used at most once; slots left over once the pool runs dry stay empty.
// Across jobs images repeat freely. Hero selection is index based and cycles
// deterministically through the candidates; the remaining slots are filled
// from a shuffled pool. The random source is injectable so tests can pin the
// exact assignments.
package composition
