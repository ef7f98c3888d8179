package game

import (
	"fmt"

	"github.com/iburimskiy/node-field/internal/animator"
)

// statusLine formats the debug overlay: viewport, frame count, edges and fps.
func statusLine(st animator.Stats, fps float64) string {
	return fmt.Sprintf("%dx%d  frames %d  edges %d  %.0f fps",
		int(st.Width), int(st.Height), st.Frames, st.Edges, fps)
}
