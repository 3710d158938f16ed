// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package layout places transcript messages as bubbles on a render surface.

Each new bubble is placed at a fixed baseline near the input bar. Before it is
placed, every existing item on the surface is shifted up by the height of the
previous bubble plus a fixed gap, which makes the transcript appear to scroll
as messages arrive. After each placement the content extent is recomputed from
the bounding boxes of everything placed so far, so scrollbars stay consistent.

# Geometry

  - Bot bubbles anchor north-west at LeftMargin (50).
  - User bubbles anchor north-east at max(width-RightMargin, RightFloor), i.e.
    max(width-50, 700). On surfaces narrower than 750 units user bubbles can
    overlap bot bubbles. This is kept as observed behavior.
  - Wrap width is max(width-180, 300), read fresh for every bubble. Resizing
    affects only bubbles placed afterwards.
  - A pointer triangle sits at the bubble's lower outer corner and an avatar
    is anchored 72 units beyond that corner.

The engine only talks to surface.Surface, so it is tested against
surfacetest.Recorder.
*/
package layout
