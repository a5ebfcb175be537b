package zplrender

// RenderContext - state of one interpretation pass. Created fresh for every
// Interpret call and released when the pass ends, whatever the outcome.
type RenderContext struct {
	cursor       Position
	layerCounter int
	layers       []int
	subs         map[string]string
	instructions []DrawInstruction
}

// NewRenderContext - cursor at 0,0, no layers allocated.
func NewRenderContext(subs map[string]string) *RenderContext {
	return &RenderContext{
		cursor: Position{X: 0, Y: 0, Valid: true},
		subs:   subs,
	}
}

// Cursor - last valid position.
func (rc *RenderContext) Cursor() Position {
	return rc.cursor
}

// Move - takes p as the new cursor when it is valid and returns the cursor to use.
func (rc *RenderContext) Move(p Position) Position {
	if p.Valid {
		rc.cursor = p
	}
	return rc.cursor
}

// NextLayer - allocates the next layer id. The base surface is 0.
func (rc *RenderContext) NextLayer() int {
	rc.layerCounter++
	rc.layers = append(rc.layers, rc.layerCounter)
	return rc.layerCounter
}

// Layers - ids allocated so far in this pass.
func (rc *RenderContext) Layers() []int {
	return append([]int(nil), rc.layers...)
}

// Substitute - resolves a payload against the pass substitutions.
func (rc *RenderContext) Substitute(token string) string {
	return Substitute(token, rc.subs)
}

// Emit - appends an instruction to the pass output.
func (rc *RenderContext) Emit(in DrawInstruction) {
	rc.instructions = append(rc.instructions, in)
}

// Instructions - what has been emitted so far.
func (rc *RenderContext) Instructions() []DrawInstruction {
	return rc.instructions
}

// Release - drops the pass state so nothing leaks into the next pass.
// Slices already returned by Instructions stay valid.
func (rc *RenderContext) Release() {
	rc.layers = nil
	rc.layerCounter = 0
	rc.cursor = Position{Valid: true}
	rc.instructions = nil
}
