package farms

import "context"

// OwnerOf expone el ownerUserID de una explotación.
// Se usa para evitar ciclos de imports entre módulos (farms <-> accessgrants).
func (s *Service) OwnerOf(ctx context.Context, farmID string) (string, error) {
	f, err := s.GetByID(ctx, farmID)
	if err != nil {
		return "", err
	}
	return f.OwnerUserID, nil
}
