package video

const (
	tilemapLayerSize = 256 // background/window layers cover the full 256x256 tilemap
)

// LayerFramebuffer is one rendering layer's pixel backing store, kept
// separate from the others so debug tooling can inspect or export a layer
// (background, window, sprites) on its own instead of only the final
// composited frame.
type LayerFramebuffer struct {
	Buffer []uint32
	Width  int
	Height int
}

func newLayerFramebuffer(width, height int) *LayerFramebuffer {
	return &LayerFramebuffer{
		Buffer: make([]uint32, width*height),
		Width:  width,
		Height: height,
	}
}

func (l *LayerFramebuffer) clear() {
	for i := range l.Buffer {
		l.Buffer[i] = 0
	}
}

// RenderLayers bundles the three per-layer framebuffers a debug view draws
// from. Enabled gates Clear so idle debug tooling doesn't pay for clearing
// buffers nothing is reading.
type RenderLayers struct {
	Background *LayerFramebuffer
	Window     *LayerFramebuffer
	Sprites    *LayerFramebuffer
	Enabled    bool
}

func NewRenderLayers() *RenderLayers {
	return &RenderLayers{
		Background: newLayerFramebuffer(tilemapLayerSize, tilemapLayerSize),
		Window:     newLayerFramebuffer(tilemapLayerSize, tilemapLayerSize),
		Sprites:    newLayerFramebuffer(FramebufferWidth, FramebufferHeight),
	}
}

// Clear resets every layer to transparent black, a no-op unless layer
// rendering has been switched on.
func (r *RenderLayers) Clear() {
	if !r.Enabled {
		return
	}
	r.Background.clear()
	r.Window.clear()
	r.Sprites.clear()
}
