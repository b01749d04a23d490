// Package gpu implements frame playback on the wgpu HAL.
//
// It owns the GPU buffers mirroring the recorded vertex and uniform
// streams, the render pipelines, the stencil clip protocol, and the
// offscreen layer attachments. The root canvas package records frames;
// this package replays them in a single pass over the op tape.
package gpu
