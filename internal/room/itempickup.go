package room

// pickupItems implements step 8: the first alive connected player found
// within an item's pick radius picks it up. Healing items apply their
// value immediately; the item is marked dirty with picked=true for one
// more send. The next tick flags it removed, and the tick after that
// deletes it from the scene.
func (s *Scene) pickupItems() {
	pickRadius := s.cfg.Items.PickRadius
	for id, it := range s.items {
		if it.removed {
			delete(s.items, id)
			continue
		}
		if it.Picked {
			it.removed = true
			continue
		}

		for _, p := range s.players {
			if !p.Connected || !p.IsAlive {
				continue
			}
			dx := float64(p.Position.X - it.Position.X)
			dy := float64(p.Position.Y - it.Position.Y)
			if dx*dx+dy*dy > float64(pickRadius)*float64(pickRadius) {
				continue
			}

			switch it.Effect {
			case "heal":
				p.Heal(it.Value)
				s.MarkPlayerDirty(p.ID, false)
			}
			it.Picked = true
			s.MarkItemDirty(it.ID)
			break
		}
	}
}
